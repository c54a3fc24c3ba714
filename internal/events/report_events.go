package events

import (
	"time"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of quality events
type EventType string

const (
	// Report lifecycle events
	EventReportSubmitted EventType = "report.submitted"
	EventReportReviewed  EventType = "report.reviewed"
	EventReportDeleted   EventType = "report.deleted"

	// Learning outcome events
	EventAchievementsRecomputed EventType = "outcome.achievements_recomputed"
)

// QualityEvent is the base event structure for all published events
type QualityEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type ReportSubmittedEvent struct {
	ReportID   uint    `json:"report_id"`
	CourseID   uint    `json:"course_id"`
	CourseCode string  `json:"course_code"`
	Term       string  `json:"term"`
	LecturerID uint    `json:"lecturer_id"`
	AvgScore   float64 `json:"avg_score"`
	StudentCnt int     `json:"student_cnt"`
}

type ReportReviewedEvent struct {
	ReportID   uint                `json:"report_id"`
	CourseID   uint                `json:"course_id"`
	CourseCode string              `json:"course_code"`
	Status     models.ReportStatus `json:"status"`
	ReviewerID uint                `json:"reviewer_id"`
	ReviewedAt time.Time           `json:"reviewed_at"`
}

type ReportDeletedEvent struct {
	ReportID  uint `json:"report_id"`
	CourseID  uint `json:"course_id"`
	DeletedBy uint `json:"deleted_by"`
}

type AchievementsRecomputedEvent struct {
	ExamID          uint   `json:"exam_id"`
	CourseID        uint   `json:"course_id"`
	UpdatedOutcomes []uint `json:"updated_outcomes"`
	SkippedOutcomes []uint `json:"skipped_outcomes,omitempty"`
	TriggeredBy     uint   `json:"triggered_by"`
}

// Event factory functions

func NewReportSubmittedEvent(report *models.Report, courseCode string, lecturerID uint) *QualityEvent {
	return &QualityEvent{
		ID:        generateEventID(),
		Type:      EventReportSubmitted,
		Timestamp: time.Now(),
		Source:    "quality-service",
		Version:   "1.0",
		Data: ReportSubmittedEvent{
			ReportID:   report.ID,
			CourseID:   report.CourseID,
			CourseCode: courseCode,
			Term:       report.Term,
			LecturerID: lecturerID,
			AvgScore:   report.AvgScore,
			StudentCnt: report.StudentCnt,
		},
	}
}

func NewReportReviewedEvent(report *models.Report, courseCode string, reviewerID uint) *QualityEvent {
	reviewedAt := time.Now()
	if report.ReviewedAt != nil {
		reviewedAt = *report.ReviewedAt
	}
	return &QualityEvent{
		ID:        generateEventID(),
		Type:      EventReportReviewed,
		Timestamp: time.Now(),
		Source:    "quality-service",
		Version:   "1.0",
		Data: ReportReviewedEvent{
			ReportID:   report.ID,
			CourseID:   report.CourseID,
			CourseCode: courseCode,
			Status:     report.Status,
			ReviewerID: reviewerID,
			ReviewedAt: reviewedAt,
		},
	}
}

func NewReportDeletedEvent(reportID, courseID, deletedBy uint) *QualityEvent {
	return &QualityEvent{
		ID:        generateEventID(),
		Type:      EventReportDeleted,
		Timestamp: time.Now(),
		Source:    "quality-service",
		Version:   "1.0",
		Data: ReportDeletedEvent{
			ReportID:  reportID,
			CourseID:  courseID,
			DeletedBy: deletedBy,
		},
	}
}

func NewAchievementsRecomputedEvent(examID, courseID uint, updated, skipped []uint, triggeredBy uint) *QualityEvent {
	return &QualityEvent{
		ID:        generateEventID(),
		Type:      EventAchievementsRecomputed,
		Timestamp: time.Now(),
		Source:    "quality-service",
		Version:   "1.0",
		Data: AchievementsRecomputedEvent{
			ExamID:          examID,
			CourseID:        courseID,
			UpdatedOutcomes: updated,
			SkippedOutcomes: skipped,
			TriggeredBy:     triggeredBy,
		},
	}
}

func generateEventID() string {
	return watermill.NewUUID()
}
