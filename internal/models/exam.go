package models

import (
	"time"

	"gorm.io/gorm"
)

type ExamType string

const (
	ExamVize      ExamType = "VIZE"
	ExamFinal     ExamType = "FINAL"
	ExamButunleme ExamType = "BUTUNLEME"
)

type Exam struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	CourseID     uint     `json:"course_id" gorm:"not null;index"`
	Type         ExamType `json:"type" gorm:"not null;size:20" validate:"required,exam_type"`
	AcademicYear string   `json:"academic_year" gorm:"not null;size:20" validate:"required"`
	Semester     string   `json:"semester" gorm:"not null;size:20" validate:"required"`
	TotalPoints  int      `json:"total_points" gorm:"default:100" validate:"omitempty,min=1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course    Course         `json:"course" gorm:"foreignKey:CourseID"`
	Questions []ExamQuestion `json:"questions" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamQuestion carries the per-question data behind outcome achievement:
// the attainable points, the observed class average (nil until graded) and an
// optional mapping to one learning outcome.
type ExamQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ExamID     uint `json:"exam_id" gorm:"not null;index"`
	QuestionNo int  `json:"question_no" gorm:"not null" validate:"required,min=1"`
	Points     int  `json:"points" gorm:"not null" validate:"required,min=1"`

	AvgStudentPoints  *float64 `json:"avg_student_points" validate:"omitempty,min=0"`
	LearningOutcomeID *uint    `json:"learning_outcome_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	LearningOutcome *LearningOutcome `json:"learning_outcome,omitempty" gorm:"foreignKey:LearningOutcomeID"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
