package model

// swagger:model Instructor
type Instructor struct {
	BaseModel
	UserID        uint  `gorm:"index;not null" json:"userId"`
	User          *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FullTime      bool  `gorm:"not null" json:"fullTime"`
	TotalLearners int   `gorm:"not null;default:0" json:"totalLearners"`
}

func (Instructor) TableName() string {
	return "instructors"
}
