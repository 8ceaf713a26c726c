package service

import (
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/testutil"
	"testing"

	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	courses    *repository.CourseRepository
	exams      *repository.ExamRepository
	enrollment *EnrollmentService
	exam       *ExamService
	course     *CourseService
	admin      *AdminService
	storage    *StorageService
}

func newTestEnv(tb testing.TB) *testEnv {
	tb.Helper()
	db := testutil.DB(tb)

	courses := repository.NewCourseRepository(db)
	exams := repository.NewExamRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	users := repository.NewUserRepository(db)

	exam := NewExamService(courses, enrollments, exams, submissions)
	storage := NewStorageService(testutil.Config(tb))
	return &testEnv{
		db:         db,
		courses:    courses,
		exams:      exams,
		enrollment: NewEnrollmentService(courses, enrollments),
		exam:       exam,
		course:     NewCourseService(courses, enrollments, exam),
		admin:      NewAdminService(courses, exams, submissions, users, storage),
		storage:    storage,
	}
}
