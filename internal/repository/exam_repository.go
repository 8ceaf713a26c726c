package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) QuestionsOf(ctx context.Context, courseID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id asc").
		Find(&questions).Error
	return questions, err
}

func (r *ExamRepository) ChoicesOf(ctx context.Context, questionID uint) ([]model.Choice, error) {
	var choices []model.Choice
	err := r.DB.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id asc").
		Find(&choices).Error
	return choices, err
}

// ChoicesOfCourse 一次查询课程下所有题目的选项
func (r *ExamRepository) ChoicesOfCourse(ctx context.Context, courseID uint) ([]model.Choice, error) {
	var choices []model.Choice
	err := r.DB.WithContext(ctx).
		Joins("JOIN questions ON questions.id = choices.question_id AND questions.deleted_at IS NULL").
		Where("questions.course_id = ?", courseID).
		Order("choices.question_id asc, choices.id asc").
		Find(&choices).Error
	return choices, err
}

// FindChoicesByIDs 不存在的 ID 会被忽略
func (r *ExamRepository) FindChoicesByIDs(ctx context.Context, ids []uint) ([]model.Choice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var choices []model.Choice
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&choices).Error
	return choices, err
}

func (r *ExamRepository) FindQuestionByID(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.WithContext(ctx).First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuestion 题目与内联选项在同一事务中创建
func (r *ExamRepository) CreateQuestion(ctx context.Context, question *model.Question) error {
	return r.DB.WithContext(ctx).Create(question).Error
}

func (r *ExamRepository) DeleteQuestion(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("question_id = ?", id).Delete(&model.Choice{}).Error
	})
}

func (r *ExamRepository) FindChoiceByID(ctx context.Context, id uint) (*model.Choice, error) {
	var c model.Choice
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ExamRepository) CreateChoice(ctx context.Context, choice *model.Choice) error {
	return r.DB.WithContext(ctx).Create(choice).Error
}

func (r *ExamRepository) UpdateChoice(ctx context.Context, choice *model.Choice) error {
	return r.DB.WithContext(ctx).Save(choice).Error
}

func (r *ExamRepository) DeleteChoice(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Delete(&model.Choice{}, id)
	return res.RowsAffected, res.Error
}
