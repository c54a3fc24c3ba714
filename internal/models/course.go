package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Code       string `json:"code" gorm:"uniqueIndex;not null;size:20" validate:"required,min=1,max=20"`
	Name       string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	LecturerID uint   `json:"lecturer_id" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Lecturer         User              `json:"lecturer" gorm:"foreignKey:LecturerID"`
	LearningOutcomes []LearningOutcome `json:"learning_outcomes,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

// LearningOutcome is a tracked course competency (DÖÇ) for accreditation
// reporting. AchievementPct is written only by achievement recomputation and
// stays nil until the first exam with mapped questions is graded.
type LearningOutcome struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	CourseID    uint   `json:"course_id" gorm:"not null;index"`
	Code        string `json:"code" gorm:"not null;size:20" validate:"required,min=1,max=20"`
	Description string `json:"description" gorm:"not null;type:text" validate:"required"`

	// Weight is recorded for the accreditation template but is not part of
	// the achievement formula.
	Weight float64 `json:"weight" gorm:"default:1"`

	AchievementPct *float64 `json:"achievement_pct"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (LearningOutcome) TableName() string {
	return "learning_outcomes"
}
