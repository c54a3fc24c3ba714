package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

// Create stores the exam together with its questions in one transaction.
func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return fmt.Errorf("failed to create exam: %w", err)
		}
		return nil
	})
}

func (e *ExamPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	err := e.db.WithContext(ctx).
		Preload("Course").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_no ASC")
		}).
		Preload("Questions.LearningOutcome").
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) ListByCourse(ctx context.Context, courseID uint) ([]*models.Exam, error) {
	var exams []*models.Exam
	err := e.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_no ASC")
		}).
		Preload("Questions.LearningOutcome").
		Order("created_at DESC").
		Find(&exams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

// UpdateQuestion records the graded class average and the outcome mapping for
// one question. A nil learningOutcomeID clears the mapping.
func (e *ExamPostgreSQL) UpdateQuestion(ctx context.Context, questionID uint, avgStudentPoints *float64, learningOutcomeID *uint) error {
	result := e.db.WithContext(ctx).
		Model(&models.ExamQuestion{}).
		Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"avg_student_points":  avgStudentPoints,
			"learning_outcome_id": learningOutcomeID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update exam question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (e *ExamPostgreSQL) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&models.ExamQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to delete exam questions: %w", err)
		}
		return tx.Delete(&models.Exam{}, id).Error
	})
}
