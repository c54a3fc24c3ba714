package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Preload("Lecturer").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Where("code = ?", code).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.db.WithContext(ctx).
		Preload("Lecturer").
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) ListByLecturer(ctx context.Context, lecturerID uint) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.db.WithContext(ctx).
		Where("lecturer_id = ?", lecturerID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lecturer courses: %w", err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.Course{}, id).Error
}

// ===== LEARNING OUTCOMES =====

func (c *CoursePostgreSQL) CreateOutcome(ctx context.Context, outcome *models.LearningOutcome) error {
	if err := c.db.WithContext(ctx).Create(outcome).Error; err != nil {
		return fmt.Errorf("failed to create learning outcome: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetOutcome(ctx context.Context, id uint) (*models.LearningOutcome, error) {
	var outcome models.LearningOutcome
	if err := c.db.WithContext(ctx).First(&outcome, id).Error; err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (c *CoursePostgreSQL) FindCourseOutcomes(ctx context.Context, courseID uint) ([]*models.LearningOutcome, error) {
	var outcomes []*models.LearningOutcome
	err := c.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("code ASC").
		Find(&outcomes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course outcomes: %w", err)
	}
	return outcomes, nil
}

// UpdateOutcomeAchievement writes one recomputed achievement percentage.
// Each outcome is persisted independently; callers must not rely on
// cross-outcome atomicity.
func (c *CoursePostgreSQL) UpdateOutcomeAchievement(ctx context.Context, outcomeID uint, achievementPct float64) error {
	result := c.db.WithContext(ctx).
		Model(&models.LearningOutcome{}).
		Where("id = ?", outcomeID).
		Update("achievement_pct", achievementPct)
	if result.Error != nil {
		return fmt.Errorf("failed to update outcome achievement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CoursePostgreSQL) DeleteOutcome(ctx context.Context, id uint) error {
	return c.db.WithContext(ctx).Delete(&models.LearningOutcome{}, id).Error
}
