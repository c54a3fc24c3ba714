package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ReportFilters struct {
	Status     *models.ReportStatus `json:"status"`
	CourseID   *uint                `json:"course_id"`
	LecturerID *uint                `json:"lecturer_id"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	ListByLecturer(ctx context.Context, lecturerID uint) ([]*models.Course, error)
	Delete(ctx context.Context, id uint) error

	// Learning outcome management
	CreateOutcome(ctx context.Context, outcome *models.LearningOutcome) error
	GetOutcome(ctx context.Context, id uint) (*models.LearningOutcome, error)
	FindCourseOutcomes(ctx context.Context, courseID uint) ([]*models.LearningOutcome, error)
	UpdateOutcomeAchievement(ctx context.Context, outcomeID uint, achievementPct float64) error
	DeleteOutcome(ctx context.Context, id uint) error
}

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Exam, error)
	UpdateQuestion(ctx context.Context, questionID uint, avgStudentPoints *float64, learningOutcomeID *uint) error
	Delete(ctx context.Context, id uint) error
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filters ReportFilters) ([]*models.Report, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus, reviewerID uint) (*models.Report, error)
	Delete(ctx context.Context, id uint) error
}

// Repository aggregates access to all entity repositories.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Exam() ExamRepository
	Report() ReportRepository
}

// IsNotFoundError reports whether err is the underlying store's missing-row
// error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
