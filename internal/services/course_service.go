package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quality-service/internal/cache"
	apperrors "github.com/SAP-F-2025/quality-service/internal/errors"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/repositories"
	"github.com/SAP-F-2025/quality-service/internal/validator"
)

const (
	courseListCacheKey = "courses:all"
	courseCacheTTL     = 5 * time.Minute
)

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, actor *models.User) (*models.Course, error)
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, actor *models.User) ([]*models.Course, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	CreateOutcome(ctx context.Context, courseID uint, req *CreateOutcomeRequest, actor *models.User) (*models.LearningOutcome, error)
	ListOutcomes(ctx context.Context, courseID uint) ([]*models.LearningOutcome, error)
	DeleteOutcome(ctx context.Context, courseID, outcomeID uint, actor *models.User) error
}

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     cache.CacheService
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cacheService cache.CacheService) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
	}
}

// ===== REQUEST TYPES =====

type CreateCourseRequest struct {
	Code       string `json:"code" validate:"required,min=1,max=20"`
	Name       string `json:"name" validate:"required,min=1,max=200"`
	LecturerID uint   `json:"lecturer_id" validate:"required"`
}

type CreateOutcomeRequest struct {
	Code        string  `json:"code" validate:"required,min=1,max=20"`
	Description string  `json:"description" validate:"required"`
	Weight      float64 `json:"weight" validate:"omitempty,gte=0"`
}

// ===== OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, actor *models.User) (*models.Course, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleManager && actor.Role != models.RoleSecretary {
		return nil, NewPermissionError(actor.ID, 0, "course", "create", "role cannot manage courses")
	}

	lecturer, err := s.repo.User().GetByID(ctx, req.LecturerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get lecturer %d: %w", req.LecturerID, err)
	}
	if lecturer.Role != models.RoleLecturer && lecturer.Role != models.RoleHeadOfDepartment {
		return nil, NewBusinessRuleError("course_lecturer_role",
			"courses can only be assigned to lecturers",
			map[string]interface{}{"lecturer_id": req.LecturerID, "role": lecturer.Role})
	}

	if _, err := s.repo.Course().GetByCode(ctx, req.Code); err == nil {
		return nil, ErrCourseDuplicateCode
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check course code %s: %w", req.Code, err)
	}

	course := &models.Course{
		Code:       req.Code,
		Name:       req.Name,
		LecturerID: req.LecturerID,
	}
	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.invalidateCourseCache(ctx)
	s.logger.Info("Course created", "course_id", course.ID, "code", course.Code, "actor_id", actor.ID)

	return s.repo.Course().GetByID(ctx, course.ID)
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return course, nil
}

// List returns the courses visible to the actor: lecturers get their own
// courses, every other role gets the full catalog.
func (s *courseService) List(ctx context.Context, actor *models.User) ([]*models.Course, error) {
	if actor.Role == models.RoleLecturer {
		return s.repo.Course().ListByLecturer(ctx, actor.ID)
	}

	var cached []*models.Course
	if err := s.cache.Get(ctx, courseListCacheKey, &cached); err == nil {
		return cached, nil
	}

	courses, err := s.repo.Course().List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, courseListCacheKey, courses, courseCacheTTL); err != nil {
		s.logger.Debug("Course cache write failed", "error", err)
	}
	return courses, nil
}

func (s *courseService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(actor.ID, id, "course", "delete", "only admins may delete courses")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Course().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course %d: %w", id, err)
	}
	s.invalidateCourseCache(ctx)
	s.logger.Info("Course deleted", "course_id", id, "actor_id", actor.ID)
	return nil
}

// ===== LEARNING OUTCOMES =====

func (s *courseService) CreateOutcome(ctx context.Context, courseID uint, req *CreateOutcomeRequest, actor *models.User) (*models.LearningOutcome, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourseManageAccess(course, actor, "add outcome to"); err != nil {
		return nil, err
	}

	weight := req.Weight
	if weight == 0 {
		weight = 1
	}
	outcome := &models.LearningOutcome{
		CourseID:    courseID,
		Code:        req.Code,
		Description: req.Description,
		Weight:      weight,
	}
	if err := s.repo.Course().CreateOutcome(ctx, outcome); err != nil {
		return nil, fmt.Errorf("failed to create learning outcome: %w", err)
	}

	s.logger.Info("Learning outcome created",
		"outcome_id", outcome.ID,
		"course_id", courseID,
		"code", outcome.Code,
		"actor_id", actor.ID)
	return outcome, nil
}

func (s *courseService) ListOutcomes(ctx context.Context, courseID uint) ([]*models.LearningOutcome, error) {
	if _, err := s.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.Course().FindCourseOutcomes(ctx, courseID)
}

func (s *courseService) DeleteOutcome(ctx context.Context, courseID, outcomeID uint, actor *models.User) error {
	course, err := s.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if err := s.checkCourseManageAccess(course, actor, "delete outcome of"); err != nil {
		return err
	}

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

	if err := s.repo.Course().DeleteOutcome(ctx, outcomeID); err != nil {
		return fmt.Errorf("failed to delete learning outcome %d: %w", outcomeID, err)
	}
	s.logger.Info("Learning outcome deleted", "outcome_id", outcomeID, "course_id", courseID, "actor_id", actor.ID)
	return nil
}

// ===== HELPERS =====

func (s *courseService) checkCourseManageAccess(course *models.Course, actor *models.User, action string) error {
	if actor.Role == models.RoleAdmin || actor.Role == models.RoleManager {
		return nil
	}
	if actor.Role == models.RoleLecturer && course.LecturerID == actor.ID {
		return nil
	}
	return NewPermissionError(actor.ID, course.ID, "course", action, "not the course lecturer")
}

func (s *courseService) invalidateCourseCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, courseListCacheKey); err != nil {
		s.logger.Debug("Course cache invalidation failed", "error", err)
	}
}
