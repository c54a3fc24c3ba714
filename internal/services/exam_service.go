package services

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/SAP-F-2025/quality-service/internal/errors"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"github.com/SAP-F-2025/quality-service/internal/validator"
)

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, actor *models.User) (*models.Exam, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.Exam, error)
	ListByCourse(ctx context.Context, courseID uint, actor *models.User) ([]*models.Exam, error)
	UpdateQuestions(ctx context.Context, examID uint, req *UpdateQuestionsRequest, actor *models.User) (*models.Exam, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	outcomes  OutcomeService
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, outcomes OutcomeService) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		outcomes:  outcomes,
	}
}

// ===== REQUEST TYPES =====

type CreateExamRequest struct {
	CourseID     uint                        `json:"course_id" validate:"required"`
	Type         models.ExamType             `json:"type" validate:"required,exam_type"`
	AcademicYear string                      `json:"academic_year" validate:"required,academic_year"`
	Semester     string                      `json:"semester" validate:"required"`
	TotalPoints  int                         `json:"total_points" validate:"omitempty,min=1"`
	Questions    []CreateExamQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateExamQuestionRequest struct {
	QuestionNo        int   `json:"question_no" validate:"required,min=1"`
	Points            int   `json:"points" validate:"required,question_points"`
	LearningOutcomeID *uint `json:"learning_outcome_id"`
}

type UpdateQuestionsRequest struct {
	Questions []QuestionUpdateRequest `json:"questions" validate:"required,min=1,dive"`
}

type QuestionUpdateRequest struct {
	ID                uint     `json:"id" validate:"required"`
	AvgStudentPoints  *float64 `json:"avg_student_points" validate:"omitempty,min=0"`
	LearningOutcomeID *uint    `json:"learning_outcome_id"`
}

// ===== OPERATIONS =====

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, actor *models.User) (*models.Exam, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	course, err := s.getCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourseAccess(course, actor, "create exam for"); err != nil {
		return nil, err
	}

	// Every mapped outcome must belong to the exam's course.
	for _, q := range req.Questions {
		if q.LearningOutcomeID != nil {
			if err := s.checkOutcomeBelongsToCourse(ctx, *q.LearningOutcomeID, course.ID); err != nil {
				return nil, err
			}
		}
	}

	totalPoints := req.TotalPoints
	if totalPoints == 0 {
		totalPoints = 100
	}

	exam := &models.Exam{
		CourseID:     req.CourseID,
		Type:         req.Type,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		TotalPoints:  totalPoints,
	}
	for _, q := range req.Questions {
		exam.Questions = append(exam.Questions, models.ExamQuestion{
			QuestionNo:        q.QuestionNo,
			Points:            q.Points,
			LearningOutcomeID: q.LearningOutcomeID,
		})
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created",
		"exam_id", exam.ID,
		"course_id", exam.CourseID,
		"type", exam.Type,
		"questions", len(exam.Questions),
		"actor_id", actor.ID)

	return s.repo.Exam().GetByIDWithQuestions(ctx, exam.ID)
}

func (s *examService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam %d: %w", id, err)
	}

	if err := s.checkCourseAccess(&exam.Course, actor, "view exam of"); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *examService) ListByCourse(ctx context.Context, courseID uint, actor *models.User) ([]*models.Exam, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourseAccess(course, actor, "list exams of"); err != nil {
		return nil, err
	}
	return s.repo.Exam().ListByCourse(ctx, courseID)
}

// UpdateQuestions records graded class averages and outcome mappings, then
// recomputes the achievement of every outcome in the exam's course.
func (s *examService) UpdateQuestions(ctx context.Context, examID uint, req *UpdateQuestionsRequest, actor *models.User) (*models.Exam, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam %d: %w", examID, err)
	}
	if err := s.checkCourseAccess(&exam.Course, actor, "update questions of"); err != nil {
		return nil, err
	}

	known := make(map[uint]bool, len(exam.Questions))
	for _, q := range exam.Questions {
		known[q.ID] = true
	}

	for _, update := range req.Questions {
		if !known[update.ID] {
			return nil, ErrQuestionNotFound
		}
		if update.LearningOutcomeID != nil {
			if err := s.checkOutcomeBelongsToCourse(ctx, *update.LearningOutcomeID, exam.CourseID); err != nil {
				return nil, err
			}
		}
		if err := s.repo.Exam().UpdateQuestion(ctx, update.ID, update.AvgStudentPoints, update.LearningOutcomeID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrQuestionNotFound
			}
			return nil, fmt.Errorf("failed to update question %d: %w", update.ID, err)
		}
	}

	if err := s.outcomes.RecomputeAchievements(ctx, examID, actor.ID); err != nil {
		// Grading data is already saved; surface the recompute failure in logs
		// rather than failing the whole update.
		s.logger.Error("Achievement recompute failed after question update",
			"exam_id", examID,
			"error", err)
	}

	return s.repo.Exam().GetByIDWithQuestions(ctx, examID)
}

func (s *examService) Delete(ctx context.Context, id uint, actor *models.User) error {
	exam, err := s.repo.Exam().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam %d: %w", id, err)
	}
	if err := s.checkCourseAccess(&exam.Course, actor, "delete exam of"); err != nil {
		return err
	}

	if err := s.repo.Exam().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam %d: %w", id, err)
	}
	s.logger.Info("Exam deleted", "exam_id", id, "actor_id", actor.ID)
	return nil
}

// ===== HELPERS =====

func (s *examService) getCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", courseID, err)
	}
	return course, nil
}

// checkCourseAccess allows admins, managers and the owning lecturer.
func (s *examService) checkCourseAccess(course *models.Course, actor *models.User, action string) error {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleManager {
		return nil
	}
	if actor.Role == models.RoleLecturer && course.LecturerID == actor.ID {
		return nil
	}
	return NewPermissionError(actor.ID, course.ID, "course", action, "not the course lecturer")
}

func (s *examService) checkOutcomeBelongsToCourse(ctx context.Context, outcomeID, courseID uint) error {
	outcome, err := s.repo.Course().GetOutcome(ctx, outcomeID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrOutcomeNotFound
		}
		return fmt.Errorf("failed to get learning outcome %d: %w", outcomeID, err)
	}
	if outcome.CourseID != courseID {
		return ErrOutcomeCourseMismatch
	}
	return nil
}
