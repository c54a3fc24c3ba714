package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportApproved ReportStatus = "APPROVED"
	ReportRejected ReportStatus = "REJECTED"
)

// Report is one analyzed grade sheet awaiting (or past) department review.
// The statistics columns mirror the analyzer output; GradeDistribution holds
// the letter-grade histogram as JSON.
type Report struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	CourseID     uint   `json:"course_id" gorm:"not null;index"`
	Term         string `json:"term" gorm:"not null;size:30" validate:"required"`
	AcademicYear string `json:"academic_year" gorm:"not null;size:20;default:2024-2025"`
	Semester     string `json:"semester" gorm:"not null;size:20;default:Güz"`

	MinScore    float64  `json:"min_score" gorm:"not null" validate:"min=0,max=100"`
	MaxScore    float64  `json:"max_score" gorm:"not null" validate:"min=0,max=100"`
	AvgScore    float64  `json:"avg_score" gorm:"not null" validate:"min=0,max=100"`
	MedianScore *float64 `json:"median_score"`
	StdDev      *float64 `json:"std_dev"`
	StudentCnt  int      `json:"student_cnt" gorm:"default:0"`
	PassCount   *int     `json:"pass_count"`
	FailCount   *int     `json:"fail_count"`
	PassRate    *float64 `json:"pass_rate"`

	GradeDistribution datatypes.JSON `json:"grade_distribution,omitempty"`

	FileName *string      `json:"file_name" gorm:"size:255"`
	Status   ReportStatus `json:"status" gorm:"not null;default:PENDING;index" validate:"omitempty,report_status"`

	ReviewerID *uint      `json:"reviewer_id"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	CreatedAt time.Time      `json:"uploaded_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course   Course `json:"course" gorm:"foreignKey:CourseID"`
	Reviewer *User  `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

func (Report) TableName() string {
	return "reports"
}
