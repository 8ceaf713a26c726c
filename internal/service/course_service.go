package service

import (
	"context"
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	Courses     CourseStore
	Enrollments EnrollmentStore
	Exam        *ExamService
}

func NewCourseService(courses CourseStore, enrollments EnrollmentStore, exam *ExamService) *CourseService {
	return &CourseService{Courses: courses, Enrollments: enrollments, Exam: exam}
}

type CourseListItem struct {
	model.Course
	IsEnrolled bool `json:"isEnrolled"`
}

// ListCourses 报名人数最多的前 10 门课程，并标记当前用户是否已报名
func (s *CourseService) ListCourses(ctx context.Context, userID uint) ([]CourseListItem, error) {
	courses, err := s.Courses.ListTop(ctx, util.CourseListLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	enrolled, err := s.Enrollments.EnrolledCourseIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CourseListItem, len(courses))
	for i, c := range courses {
		items[i] = CourseListItem{Course: c, IsEnrolled: enrolled[c.ID]}
	}
	return items, nil
}

type CourseDetail struct {
	Course     *model.Course  `json:"course"`
	Lessons    []model.Lesson `json:"lessons"`
	Questions  []ExamQuestion `json:"questions"`
	IsEnrolled bool           `json:"isEnrolled"`
}

func (s *CourseService) CourseDetail(ctx context.Context, userID, courseID uint) (*CourseDetail, error) {
	course, err := s.Courses.FindDetail(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	lessons, err := s.Courses.LessonsOf(ctx, courseID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Exam.ExamQuestions(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled := false
	if userID != 0 {
		n, err := s.Enrollments.Count(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
		enrolled = n > 0
	}

	return &CourseDetail{
		Course:     course,
		Lessons:    lessons,
		Questions:  questions,
		IsEnrolled: enrolled,
	}, nil
}
