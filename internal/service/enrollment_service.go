package service

import (
	"context"
	"errors"
	"fmt"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	Courses     CourseStore
	Enrollments EnrollmentStore
	Now         func() time.Time
}

func NewEnrollmentService(courses CourseStore, enrollments EnrollmentStore) *EnrollmentService {
	return &EnrollmentService{
		Courses:     courses,
		Enrollments: enrollments,
		Now:         time.Now,
	}
}

// IsEnrolled 未登录用户总是返回 false
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	n, err := s.Enrollments.Count(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Enroll 为用户报名课程。未登录或已报名时为空操作，返回 false。
// 新报名使用 honor 模式，并在同一事务中累加课程报名人数。
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (created bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "course.enroll", attribute.Int64("course.id", int64(courseID)))
	defer func() {
		span.SetAttributes(attribute.Bool("enrollment.created", created))
		tracing.End(span, err)
	}()

	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrCourseNotFound
		}
		return false, err
	}

	if userID == 0 {
		return false, nil
	}

	enrolled, err := s.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	if enrolled {
		return false, nil
	}

	enrollment := &model.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		DateEnrolled: s.Now(),
		Mode:         model.ModeHonor,
		Rating:       model.DefaultRating,
	}
	if err := s.Enrollments.CreateAndIncrement(ctx, enrollment); err != nil {
		// 并发重复报名由唯一索引兜底，视为空操作
		if errors.Is(err, util.ErrAlreadyEnrolled) {
			return false, nil
		}
		return false, fmt.Errorf("create enrollment: %w", err)
	}

	monitoring.EnrollmentsTotal.Inc()
	logger.Log.Info("user enrolled",
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID),
		zap.Uint("enrollmentId", enrollment.ID),
	)
	return true, nil
}
