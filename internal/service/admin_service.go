package service

import (
	"context"
	"errors"
	"fmt"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService 课程、课时、题目与选项的维护
type AdminService struct {
	CourseRepo     *repository.CourseRepository
	ExamRepo       *repository.ExamRepository
	SubmissionRepo *repository.SubmissionRepository
	UserRepo       *repository.UserRepository
	Storage        *StorageService
}

func NewAdminService(
	courseRepo *repository.CourseRepository,
	examRepo *repository.ExamRepository,
	submissionRepo *repository.SubmissionRepository,
	userRepo *repository.UserRepository,
	storage *StorageService,
) *AdminService {
	return &AdminService{
		CourseRepo:     courseRepo,
		ExamRepo:       examRepo,
		SubmissionRepo: submissionRepo,
		UserRepo:       userRepo,
		Storage:        storage,
	}
}

// removeImage 清理不再被引用的封面，失败只记录日志
func (s *AdminService) removeImage(ctx context.Context, imageURL string) {
	if s.Storage == nil || imageURL == "" {
		return
	}
	if err := s.Storage.RemoveCourseImage(ctx, imageURL); err != nil {
		logger.Log.Warn("remove course image failed", zap.String("image", imageURL), zap.Error(err))
	}
}

func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

type CourseRequest struct {
	Name        string `json:"name" form:"name" binding:"max=30"`
	Description string `json:"description" form:"description" binding:"max=1000"`
	PubDate     string `json:"pubDate" form:"pubDate"`
}

func (req CourseRequest) apply(course *model.Course) error {
	course.Name = req.Name
	if course.Name == "" {
		course.Name = model.DefaultCourseName
	}
	course.Description = req.Description
	course.PubDate = nil
	if req.PubDate != "" {
		t, err := time.Parse(util.DateFormat, req.PubDate)
		if err != nil {
			return fmt.Errorf("%w: pubDate %q", util.ErrInvalidDate, req.PubDate)
		}
		course.PubDate = &t
	}
	return nil
}

func (s *AdminService) CreateCourse(ctx context.Context, req CourseRequest) (*model.Course, error) {
	course := &model.Course{}
	if err := req.apply(course); err != nil {
		return nil, err
	}
	if err := s.CourseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *AdminService) UpdateCourse(ctx context.Context, id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	if err := req.apply(course); err != nil {
		return nil, err
	}
	if err := s.CourseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *AdminService) SetCourseImage(ctx context.Context, id uint, imageURL string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	old := course.Image
	course.Image = imageURL
	if err := s.CourseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	if old != imageURL {
		s.removeImage(ctx, old)
	}
	return course, nil
}

func (s *AdminService) DeleteCourse(ctx context.Context, id uint) error {
	course, err := s.CourseRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, util.ErrCourseNotFound)
	}
	if err := s.CourseRepo.Delete(ctx, id); err != nil {
		return notFound(err, util.ErrCourseNotFound)
	}
	s.removeImage(ctx, course.Image)
	return nil
}

type LessonRequest struct {
	Title   string `json:"title" binding:"max=200"`
	Order   int    `json:"order"`
	Content string `json:"content"`
}

func (s *AdminService) CreateLesson(ctx context.Context, courseID uint, req LessonRequest) (*model.Lesson, error) {
	if _, err := s.CourseRepo.FindByID(ctx, courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	lesson := &model.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Order:    req.Order,
		Content:  req.Content,
	}
	if lesson.Title == "" {
		lesson.Title = "title"
	}
	if err := s.CourseRepo.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *AdminService) DeleteLesson(ctx context.Context, id uint) error {
	n, err := s.CourseRepo.DeleteLesson(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrLessonNotFound
	}
	return nil
}

type ChoiceRequest struct {
	Content   string `json:"content" binding:"required,max=200"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	Content string          `json:"content" binding:"required,max=200"`
	Grade   *int            `json:"grade" binding:"omitempty,min=0"`
	Choices []ChoiceRequest `json:"choices" binding:"dive"`
}

// CreateQuestion 创建题目及其内联选项
func (s *AdminService) CreateQuestion(ctx context.Context, courseID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.CourseRepo.FindByID(ctx, courseID); err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}

	q := &model.Question{
		CourseID: courseID,
		Content:  req.Content,
		Grade:    model.DefaultQuestionGrade,
	}
	if req.Grade != nil {
		q.Grade = *req.Grade
	}
	for _, c := range req.Choices {
		q.Choices = append(q.Choices, model.Choice{Content: c.Content, IsCorrect: c.IsCorrect})
	}

	if err := s.ExamRepo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AdminService) DeleteQuestion(ctx context.Context, id uint) error {
	return notFound(s.ExamRepo.DeleteQuestion(ctx, id), util.ErrQuestionNotFound)
}

// ListChoices 管理端查看题目选项，包含正确答案标记
func (s *AdminService) ListChoices(ctx context.Context, questionID uint) ([]model.Choice, error) {
	if _, err := s.ExamRepo.FindQuestionByID(ctx, questionID); err != nil {
		return nil, notFound(err, util.ErrQuestionNotFound)
	}
	return s.ExamRepo.ChoicesOf(ctx, questionID)
}

func (s *AdminService) CreateChoice(ctx context.Context, questionID uint, req ChoiceRequest) (*model.Choice, error) {
	if _, err := s.ExamRepo.FindQuestionByID(ctx, questionID); err != nil {
		return nil, notFound(err, util.ErrQuestionNotFound)
	}
	c := &model.Choice{QuestionID: questionID, Content: req.Content, IsCorrect: req.IsCorrect}
	if err := s.ExamRepo.CreateChoice(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type ChoiceUpdateRequest struct {
	Content   *string `json:"content" binding:"omitempty,max=200"`
	IsCorrect *bool   `json:"isCorrect"`
}

// UpdateChoice 修改正确答案后，历史提交在查看结果时会按新答案重新评分
func (s *AdminService) UpdateChoice(ctx context.Context, id uint, req ChoiceUpdateRequest) (*model.Choice, error) {
	c, err := s.ExamRepo.FindChoiceByID(ctx, id)
	if err != nil {
		return nil, notFound(err, util.ErrChoiceNotFound)
	}
	if req.Content != nil {
		c.Content = *req.Content
	}
	if req.IsCorrect != nil {
		c.IsCorrect = *req.IsCorrect
	}
	if err := s.ExamRepo.UpdateChoice(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *AdminService) DeleteChoice(ctx context.Context, id uint) error {
	n, err := s.ExamRepo.DeleteChoice(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrChoiceNotFound
	}
	return nil
}

type InstructorRequest struct {
	UserID        uint  `json:"userId" binding:"required"`
	FullTime      *bool `json:"fullTime"`
	TotalLearners int   `json:"totalLearners" binding:"min=0"`
}

// CreateInstructor 为已有用户创建讲师档案，学员角色会提升为讲师
func (s *AdminService) CreateInstructor(ctx context.Context, req InstructorRequest) (*model.Instructor, error) {
	user, err := s.UserRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}

	instructor := &model.Instructor{
		UserID:        user.ID,
		FullTime:      true,
		TotalLearners: req.TotalLearners,
	}
	if req.FullTime != nil {
		instructor.FullTime = *req.FullTime
	}

	err = s.CourseRepo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(instructor).Error; err != nil {
			return err
		}
		if user.Role == model.RoleLearner {
			return tx.Model(user).Update("role", model.RoleInstructor).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	instructor.User = user
	return instructor, nil
}

func (s *AdminService) AddCourseInstructor(ctx context.Context, courseID, instructorID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	instructor, err := s.CourseRepo.FindInstructorByID(ctx, instructorID)
	if err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	if err := s.CourseRepo.AddInstructor(ctx, course, instructor); err != nil {
		return nil, err
	}
	return s.CourseRepo.FindDetail(ctx, courseID)
}

type LearnerRequest struct {
	UserID     uint   `json:"userId" binding:"required"`
	Occupation string `json:"occupation" binding:"omitempty,oneof=student developer data_scientist dba"`
	SocialLink string `json:"socialLink" binding:"omitempty,url,max=200"`
}

func (s *AdminService) CreateLearner(ctx context.Context, req LearnerRequest) (*model.Learner, error) {
	if _, err := s.UserRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	occupation := model.Occupation(req.Occupation)
	if !occupation.Valid() {
		occupation = model.OccupationStudent
	}
	learner := &model.Learner{UserID: req.UserID, Occupation: occupation, SocialLink: req.SocialLink}
	if err := s.UserRepo.CreateLearner(ctx, learner); err != nil {
		return nil, err
	}
	return learner, nil
}

func (s *AdminService) ListSubmissions(ctx context.Context, courseID uint, page, limit int) ([]repository.SubmissionRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.SubmissionRepo.ListByCourse(ctx, courseID, page, limit)
}
