package service

import (
	"context"
	"onlinecourse_backend/internal/model"
)

// 服务层依赖的存储接口，由 repository 包中的 gorm 实现满足

type CourseStore interface {
	FindByID(ctx context.Context, id uint) (*model.Course, error)
	FindDetail(ctx context.Context, id uint) (*model.Course, error)
	ListTop(ctx context.Context, limit int) ([]model.Course, error)
	LessonsOf(ctx context.Context, courseID uint) ([]model.Lesson, error)
}

type EnrollmentStore interface {
	Find(ctx context.Context, userID, courseID uint) (*model.Enrollment, error)
	Count(ctx context.Context, userID, courseID uint) (int64, error)
	EnrolledCourseIDs(ctx context.Context, userID uint, courseIDs []uint) (map[uint]bool, error)
	CreateAndIncrement(ctx context.Context, e *model.Enrollment) error
}

type ExamStore interface {
	QuestionsOf(ctx context.Context, courseID uint) ([]model.Question, error)
	ChoicesOfCourse(ctx context.Context, courseID uint) ([]model.Choice, error)
	FindChoicesByIDs(ctx context.Context, ids []uint) ([]model.Choice, error)
}

type SubmissionStore interface {
	CreateWithChoices(ctx context.Context, s *model.Submission, choices []model.Choice) error
	FindByID(ctx context.Context, id uint) (*model.Submission, error)
}

// Viewer 当前请求的用户身份，UserID 为 0 表示未登录
type Viewer struct {
	UserID uint
	Role   model.UserRole
}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

// IsStaff 讲师与管理员可以查看任意提交
func (v Viewer) IsStaff() bool {
	return v.Role == model.RoleAdmin || v.Role == model.RoleInstructor
}
