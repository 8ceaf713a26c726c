package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// CreateWithChoices 创建提交并一次性写入所选选项的关联，选项本身不会被更新
func (r *SubmissionRepository) CreateWithChoices(ctx context.Context, s *model.Submission, choices []model.Choice) error {
	s.Choices = choices
	return r.DB.WithContext(ctx).Omit("Choices.*").Create(s).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.WithContext(ctx).
		Preload("Enrollment").
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.id asc")
		}).
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type SubmissionRow struct {
	ID           uint   `json:"id"`
	EnrollmentID uint   `json:"enrollmentId"`
	Username     string `json:"username"`
	CourseID     uint   `json:"courseId"`
	CourseName   string `json:"courseName"`
}

// ListByCourse 管理端提交列表，courseID 为 0 时不过滤
func (r *SubmissionRepository) ListByCourse(ctx context.Context, courseID uint, page, limit int) ([]SubmissionRow, int64, error) {
	var rows []SubmissionRow
	var total int64

	query := r.DB.WithContext(ctx).Table("submissions").
		Select("submissions.id, submissions.enrollment_id, users.username, courses.id AS course_id, courses.name AS course_name").
		Joins("JOIN enrollments ON enrollments.id = submissions.enrollment_id").
		Joins("JOIN users ON users.id = enrollments.user_id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("submissions.deleted_at IS NULL")
	if courseID > 0 {
		query = query.Where("enrollments.course_id = ?", courseID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("submissions.id desc").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}

func deleteSubmissions(tx *gorm.DB, cond string, args ...interface{}) error {
	var ids []uint
	if err := tx.Model(&model.Submission{}).Where(cond, args...).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM submission_choices WHERE submission_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.Submission{}).Error
}
