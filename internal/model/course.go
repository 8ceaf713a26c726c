package model

import "time"

const DefaultCourseName = "online course"

// swagger:model Course
type Course struct {
	BaseModel
	Name            string        `gorm:"size:30;not null;default:'online course'" json:"name"`
	Image           string        `gorm:"size:255" json:"image"`
	Description     string        `gorm:"size:1000" json:"description"`
	PubDate         *time.Time    `gorm:"type:date" json:"pubDate,omitempty"`
	Instructors     []*Instructor `gorm:"many2many:course_instructors;" json:"instructors,omitempty"`
	TotalEnrollment int           `gorm:"not null;default:0" json:"totalEnrollment"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	Title    string `gorm:"size:200;default:'title'" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Content  string `gorm:"type:text" json:"content"`
}

func (Lesson) TableName() string {
	return "lessons"
}
