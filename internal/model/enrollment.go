package model

import "time"

type EnrollmentMode string

const (
	ModeAudit EnrollmentMode = "audit"
	ModeHonor EnrollmentMode = "honor"
	ModeBeta  EnrollmentMode = "BETA"
)

const DefaultRating = 5.0

// Enrollment 用户与课程的关联，(user_id, course_id) 唯一
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID       uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	User         *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CourseID     uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Course       *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	DateEnrolled time.Time      `gorm:"type:date" json:"dateEnrolled"`
	Mode         EnrollmentMode `gorm:"size:5;default:'audit'" json:"mode"`
	Rating       float64        `gorm:"default:5" json:"rating"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// Submission 一次考试提交，创建后不再修改
// swagger:model Submission
type Submission struct {
	BaseModel
	EnrollmentID uint        `gorm:"index;not null" json:"enrollmentId"`
	Enrollment   *Enrollment `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
	Choices      []Choice    `gorm:"many2many:submission_choices;" json:"choices,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
