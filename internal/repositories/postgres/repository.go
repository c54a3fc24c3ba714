package postgres

import (
	"fmt"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	user   repositories.UserRepository
	course repositories.CourseRepository
	exam   repositories.ExamRepository
	report repositories.ReportRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		user:   NewUserPostgreSQL(db),
		course: NewCoursePostgreSQL(db),
		exam:   NewExamPostgreSQL(db),
		report: NewReportPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository     { return r.user }
func (r *repository) Course() repositories.CourseRepository { return r.course }
func (r *repository) Exam() repositories.ExamRepository     { return r.exam }
func (r *repository) Report() repositories.ReportRepository { return r.report }

// AutoMigrate creates or updates the schema for all tracked entities.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.LearningOutcome{},
		&models.Exam{},
		&models.ExamQuestion{},
		&models.Report{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
