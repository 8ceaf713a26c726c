package model

const DefaultQuestionGrade = 50

// swagger:model Question
type Question struct {
	BaseModel
	CourseID uint     `gorm:"index;not null" json:"courseId"`
	Content  string   `gorm:"size:200" json:"content"`
	Grade    int      `gorm:"not null" json:"grade"`
	Choices  []Choice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Content    string `gorm:"size:200" json:"content"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Choice) TableName() string {
	return "choices"
}
