package repository

import (
	"context"
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

// Update 只写入可编辑字段，total_enrollment 仅由报名事务维护
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).
		Model(course).
		Select("Name", "Image", "Description", "PubDate", "UpdatedAt").
		Updates(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetail 带讲师信息
func (r *CourseRepository) FindDetail(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Preload("Instructors.User").First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListTop 按报名人数降序返回前 limit 门课程
func (r *CourseRepository) ListTop(ctx context.Context, limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Order("total_enrollment desc, id asc").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

// Delete 级联删除课程下的课时、题目、选项、报名与提交记录
func (r *CourseRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, id).Error; err != nil {
			return err
		}

		var enrollmentIDs []uint
		if err := tx.Model(&model.Enrollment{}).Where("course_id = ?", id).Pluck("id", &enrollmentIDs).Error; err != nil {
			return err
		}
		if len(enrollmentIDs) > 0 {
			if err := deleteSubmissions(tx, "enrollment_id IN ?", enrollmentIDs); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", enrollmentIDs).Delete(&model.Enrollment{}).Error; err != nil {
				return err
			}
		}

		var questionIDs []uint
		if err := tx.Model(&model.Question{}).Where("course_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Choice{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", questionIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&course).Association("Instructors").Clear(); err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
}

func (r *CourseRepository) LessonsOf(ctx context.Context, courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("id asc").
		Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) CreateLesson(ctx context.Context, lesson *model.Lesson) error {
	return r.DB.WithContext(ctx).Create(lesson).Error
}

func (r *CourseRepository) DeleteLesson(ctx context.Context, id uint) (int64, error) {
	res := r.DB.WithContext(ctx).Delete(&model.Lesson{}, id)
	return res.RowsAffected, res.Error
}

func (r *CourseRepository) FindInstructorByID(ctx context.Context, id uint) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.DB.WithContext(ctx).Preload("User").First(&instructor, id).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *CourseRepository) AddInstructor(ctx context.Context, course *model.Course, instructor *model.Instructor) error {
	return r.DB.WithContext(ctx).Model(course).Association("Instructors").Append(instructor)
}

// RecountEnrollments 按报名记录重新计算所有课程的 total_enrollment，返回被修正的课程数
func (r *CourseRepository) RecountEnrollments(ctx context.Context) (int64, error) {
	count := func() *gorm.DB {
		return r.DB.Model(&model.Enrollment{}).
			Select("COUNT(*)").
			Where("enrollments.course_id = courses.id")
	}

	res := r.DB.WithContext(ctx).Model(&model.Course{}).
		Where("total_enrollment <> (?)", count()).
		Update("total_enrollment", gorm.Expr("(?)", count()))
	return res.RowsAffected, res.Error
}
