package validator

import (
	"testing"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rolePayload struct {
	Role models.UserRole `json:"role" validate:"required,user_role"`
}

type statusPayload struct {
	Status models.ReportStatus `json:"status" validate:"required,report_status"`
}

type examPayload struct {
	Type models.ExamType `json:"type" validate:"required,exam_type"`
}

type yearPayload struct {
	AcademicYear string `json:"academic_year" validate:"omitempty,academic_year"`
}

type pointsPayload struct {
	Points int `json:"points" validate:"required,question_points"`
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	t.Run("UserRole", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(rolePayload{Role: models.RoleLecturer}))
		assert.NoError(t, v.ValidateStruct(rolePayload{Role: models.RoleHeadOfDepartment}))
		assert.Error(t, v.ValidateStruct(rolePayload{Role: "STUDENT"}))
	})

	t.Run("ReportStatus", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(statusPayload{Status: models.ReportApproved}))
		assert.Error(t, v.ValidateStruct(statusPayload{Status: "DRAFT"}))
	})

	t.Run("ExamType", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(examPayload{Type: models.ExamButunleme}))
		assert.Error(t, v.ValidateStruct(examPayload{Type: "quiz"}))
	})

	t.Run("QuestionPoints", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(pointsPayload{Points: 1}))
		assert.NoError(t, v.ValidateStruct(pointsPayload{Points: 100}))
		assert.Error(t, v.ValidateStruct(pointsPayload{Points: 0}))
		assert.Error(t, v.ValidateStruct(pointsPayload{Points: 101}))
	})

	t.Run("AcademicYear", func(t *testing.T) {
		assert.NoError(t, v.ValidateStruct(yearPayload{AcademicYear: "2024-2025"}))
		assert.NoError(t, v.ValidateStruct(yearPayload{}))
		assert.Error(t, v.ValidateStruct(yearPayload{AcademicYear: "2024"}))
		assert.Error(t, v.ValidateStruct(yearPayload{AcademicYear: "24-25"}))
	})
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.ValidateStruct(yearPayload{AcademicYear: "kötü"})
	require.Error(t, err)

	validationErrors, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	require.Len(t, validationErrors, 1)
	assert.Equal(t, "academic_year", validationErrors[0].Field())
}
