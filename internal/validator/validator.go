package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var academicYearPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// Validator wraps struct-tag validation with the domain's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("exam_type", validateExamType)
	validate.RegisterValidation("report_status", validateReportStatus)
	validate.RegisterValidation("academic_year", validateAcademicYear)
	validate.RegisterValidation("question_points", validateQuestionPoints)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleAdmin,
		models.RoleManager,
		models.RoleLecturer,
		models.RoleHeadOfDepartment,
		models.RoleSecretary,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

func validateExamType(fl validator.FieldLevel) bool {
	validTypes := []models.ExamType{
		models.ExamVize,
		models.ExamFinal,
		models.ExamButunleme,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateReportStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.ReportStatus{
		models.ReportPending,
		models.ReportApproved,
		models.ReportRejected,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func validateAcademicYear(fl validator.FieldLevel) bool {
	return academicYearPattern.MatchString(fl.Field().String())
}

// Question points live on the 100-point exam scale.
func validateQuestionPoints(fl validator.FieldLevel) bool {
	points := fl.Field().Int()
	return points >= 1 && points <= 100
}
