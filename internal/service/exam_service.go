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

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExamService struct {
	Courses     CourseStore
	Enrollments EnrollmentStore
	Exams       ExamStore
	Submissions SubmissionStore
}

func NewExamService(courses CourseStore, enrollments EnrollmentStore, exams ExamStore, submissions SubmissionStore) *ExamService {
	return &ExamService{
		Courses:     courses,
		Enrollments: enrollments,
		Exams:       exams,
		Submissions: submissions,
	}
}

func (s *ExamService) findCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// Submit 创建一次考试提交。用户未报名时返回 util.ErrNotEnrolled；
// 不存在的选项 ID 会被静默丢弃。
func (s *ExamService) Submit(ctx context.Context, userID, courseID uint, req SubmitExamRequest) (sub *model.Submission, err error) {
	ctx, span := tracing.StartSpan(ctx, "exam.submit",
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int("choices.requested", len(req.ChoiceIDs)),
	)
	defer func() { tracing.End(span, err) }()

	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.Enrollments.Find(ctx, userID, course.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	choices, err := s.Exams.FindChoicesByIDs(ctx, dedupe(req.ChoiceIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve choices: %w", err)
	}

	submission := &model.Submission{EnrollmentID: enrollment.ID}
	if err := s.Submissions.CreateWithChoices(ctx, submission, choices); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	monitoring.SubmissionsTotal.Inc()
	logger.Log.Info("exam submitted",
		zap.Uint("userId", userID),
		zap.Uint("courseId", course.ID),
		zap.Uint("submissionId", submission.ID),
		zap.Int("requested", len(req.ChoiceIDs)),
		zap.Int("resolved", len(choices)),
	)
	return submission, nil
}

type ExamResult struct {
	Course          *model.Course    `json:"course"`
	SubmissionID    uint             `json:"submissionId"`
	SelectedIDs     []uint           `json:"selectedIds"`
	Grade           int              `json:"grade"`
	PossibleGrade   int              `json:"possibleGrade"`
	QuestionResults []QuestionResult `json:"questionResults"`
}

// Result 根据提交中保存的选项和当前的正确答案重新计算成绩，不读取任何缓存分数
func (s *ExamService) Result(ctx context.Context, viewer Viewer, courseID, submissionID uint) (res *ExamResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "exam.result",
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("submission.id", int64(submissionID)),
	)
	defer func() { tracing.End(span, err) }()

	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	submission, err := s.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.Enrollment == nil || submission.Enrollment.CourseID != course.ID {
		return nil, util.ErrSubmissionNotFound
	}
	if !viewer.IsStaff() && submission.Enrollment.UserID != viewer.UserID {
		return nil, util.ErrSubmissionNotFound
	}

	questions, err := s.Exams.QuestionsOf(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	choices, err := s.Exams.ChoicesOfCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	results, grade := GradeQuestions(questions, groupChoices(choices), submission.Choices)

	possible := 0
	for _, q := range questions {
		possible += q.Grade
	}

	monitoring.ResultViews.WithLabelValues(outcome(grade, possible)).Inc()
	span.SetAttributes(attribute.Int("exam.grade", grade), attribute.Int("exam.possible", possible))

	selectedIDs := make([]uint, len(submission.Choices))
	for i, c := range submission.Choices {
		selectedIDs[i] = c.ID
	}

	return &ExamResult{
		Course:          course,
		SubmissionID:    submission.ID,
		SelectedIDs:     selectedIDs,
		Grade:           grade,
		PossibleGrade:   possible,
		QuestionResults: results,
	}, nil
}

// ExamChoice 学生端看到的选项，不包含正确答案标记
type ExamChoice struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

type ExamQuestion struct {
	ID      uint         `json:"id"`
	Content string       `json:"content"`
	Grade   int          `json:"grade"`
	Choices []ExamChoice `json:"choices"`
}

func (s *ExamService) ExamQuestions(ctx context.Context, courseID uint) ([]ExamQuestion, error) {
	questions, err := s.Exams.QuestionsOf(ctx, courseID)
	if err != nil {
		return nil, err
	}
	choices, err := s.Exams.ChoicesOfCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	byQuestion := groupChoices(choices)

	out := make([]ExamQuestion, len(questions))
	for i, q := range questions {
		eq := ExamQuestion{ID: q.ID, Content: q.Content, Grade: q.Grade, Choices: []ExamChoice{}}
		for _, c := range byQuestion[q.ID] {
			eq.Choices = append(eq.Choices, ExamChoice{ID: c.ID, Content: c.Content})
		}
		out[i] = eq
	}
	return out, nil
}

func outcome(grade, possible int) string {
	switch {
	case possible > 0 && grade == possible:
		return "full"
	case grade > 0:
		return "partial"
	default:
		return "zero"
	}
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
