package model

type Occupation string

const (
	OccupationStudent       Occupation = "student"
	OccupationDeveloper     Occupation = "developer"
	OccupationDataScientist Occupation = "data_scientist"
	OccupationDBA           Occupation = "dba"
)

func (o Occupation) Valid() bool {
	switch o {
	case OccupationStudent, OccupationDeveloper, OccupationDataScientist, OccupationDBA:
		return true
	}
	return false
}

// swagger:model Learner
type Learner struct {
	BaseModel
	UserID     uint       `gorm:"index;not null" json:"userId"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Occupation Occupation `gorm:"size:20;not null;default:'student'" json:"occupation"`
	SocialLink string     `gorm:"size:200" json:"socialLink"`
}

func (Learner) TableName() string {
	return "learners"
}
