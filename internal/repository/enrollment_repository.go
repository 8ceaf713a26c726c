package repository

import (
	"context"
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Find(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Count(ctx context.Context, userID, courseID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&n).Error
	return n, err
}

// EnrolledCourseIDs 返回 courseIDs 中用户已报名的课程集合
func (r *EnrollmentRepository) EnrolledCourseIDs(ctx context.Context, userID uint, courseIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if userID == 0 || len(courseIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// CreateAndIncrement 在同一事务内插入报名记录并累加课程报名数。
// 已存在或唯一索引冲突时返回 util.ErrAlreadyEnrolled，计数器不变。
func (r *EnrollmentRepository) CreateAndIncrement(ctx context.Context, e *model.Enrollment) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Enrollment{}).
			Where("user_id = ? AND course_id = ?", e.UserID, e.CourseID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return util.ErrAlreadyEnrolled
		}

		if err := tx.Create(e).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Course{}).
			Where("id = ?", e.CourseID).
			Update("total_enrollment", gorm.Expr("total_enrollment + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrCourseNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyEnrolled
	}
	return err
}
