package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quality-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Report specific errors
	ErrReportNotFound        = errors.New("report not found")
	ErrReportAccessDenied    = errors.New("access denied to report")
	ErrReportAlreadyReviewed = errors.New("report has already been reviewed")
	ErrReportInvalidStatus   = errors.New("invalid report status transition")
	ErrUnsupportedFileType   = errors.New("unsupported file type - only .xlsx and .xls are accepted")

	// Course specific errors
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseAccessDenied    = errors.New("access denied to course")
	ErrCourseDuplicateCode   = errors.New("course code already exists")
	ErrOutcomeNotFound       = errors.New("learning outcome not found")
	ErrOutcomeCourseMismatch = errors.New("learning outcome belongs to a different course")

	// Exam specific errors
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamAccessDenied = errors.New("access denied to exam")
	ErrQuestionNotFound = errors.New("exam question not found")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrUserInactive            = errors.New("user account is deactivated")
	ErrUserDuplicateEmail      = errors.New("email already registered")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrOutcomeNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrReportAccessDenied) ||
		errors.Is(err, ErrCourseAccessDenied) ||
		errors.Is(err, ErrExamAccessDenied) ||
		errors.Is(err, ErrInsufficientPermissions) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrUnsupportedFileType) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrCourseDuplicateCode) ||
		errors.Is(err, ErrUserDuplicateEmail) ||
		errors.Is(err, ErrReportAlreadyReviewed)
}
