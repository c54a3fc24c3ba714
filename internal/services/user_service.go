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

// UserService manages the login whitelist. Accounts are provisioned by
// admins; a user that is missing here cannot sign in at all.
type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest, actor *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, actor *models.User) ([]*models.User, error)
	Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*models.User, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== REQUEST TYPES =====

type CreateUserRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	FullName string          `json:"full_name" validate:"required,min=1,max=100"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`
}

type UpdateUserRequest struct {
	FullName *string          `json:"full_name" validate:"omitempty,min=1,max=100"`
	Role     *models.UserRole `json:"role" validate:"omitempty,user_role"`
	IsActive *bool            `json:"is_active"`
}

// ===== OPERATIONS =====

func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor *models.User) (*models.User, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.ID, 0, "user", "create", "only admins may manage accounts")
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserDuplicateEmail
	}

	user := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "email", user.Email, "role", user.Role, "actor_id", actor.ID)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleManager {
		return nil, NewPermissionError(actor.ID, 0, "user", "list", "only admins and managers may list accounts")
	}
	return s.repo.User().List(ctx)
}

func (s *userService) Update(ctx context.Context, id uint, req *UpdateUserRequest, actor *models.User) (*models.User, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.ID, id, "user", "update", "only admins may manage accounts")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		// Admins cannot lock themselves out.
		if !*req.IsActive && user.ID == actor.ID {
			return nil, NewBusinessRuleError("self_deactivation",
				"an account cannot deactivate itself", nil)
		}
		user.IsActive = *req.IsActive
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	s.logger.Info("User updated", "user_id", id, "actor_id", actor.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(actor.ID, id, "user", "delete", "only admins may manage accounts")
	}
	if id == actor.ID {
		return NewBusinessRuleError("self_deletion", "an account cannot delete itself", nil)
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.User().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	s.logger.Info("User deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}
