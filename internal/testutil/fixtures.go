package testutil

import (
	"context"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "password123"

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, username string, role model.UserRole) *model.User {
	tb.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &model.User{
		Username:  username,
		FirstName: "A",
		LastName:  "B",
		Password:  string(hashed),
		Role:      role,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, db *gorm.DB, name string, totalEnrollment int) *model.Course {
	tb.Helper()
	c := &model.Course{
		Name:            name,
		Description:     "about " + name,
		TotalEnrollment: totalEnrollment,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedLesson(tb testing.TB, ctx context.Context, db *gorm.DB, courseID uint, title string, order int) *model.Lesson {
	tb.Helper()
	l := &model.Lesson{CourseID: courseID, Title: title, Order: order, Content: title + " content"}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedQuestion 创建题目及选项，correct[i] 为第 i 个选项是否正确
func SeedQuestion(tb testing.TB, ctx context.Context, db *gorm.DB, courseID uint, grade int, correct ...bool) *model.Question {
	tb.Helper()
	q := &model.Question{CourseID: courseID, Content: "question", Grade: grade}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	for i, ok := range correct {
		c := model.Choice{QuestionID: q.ID, Content: "choice", IsCorrect: ok}
		if err := db.WithContext(ctx).Create(&c).Error; err != nil {
			tb.Fatalf("seed choice %d: %v", i, err)
		}
		q.Choices = append(q.Choices, c)
	}
	return q
}

func SeedEnrollment(tb testing.TB, ctx context.Context, db *gorm.DB, userID, courseID uint) *model.Enrollment {
	tb.Helper()
	e := &model.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		DateEnrolled: time.Now(),
		Mode:         model.ModeHonor,
		Rating:       model.DefaultRating,
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

// Token 为用户签发测试用 JWT
func Token(tb testing.TB, u *model.User) string {
	tb.Helper()
	token, err := util.GenerateJWT(u, JWTSecret, time.Hour)
	if err != nil {
		tb.Fatalf("generate token: %v", err)
	}
	return token
}
