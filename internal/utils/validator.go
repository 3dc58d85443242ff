package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hkr-team/assessment-engine/internal/models"
)

// Validator wraps a configured validator.Validate instance with the
// engine's custom validators registered.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with all custom validators registered.
func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate validates struct tags on s.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

func ValidateQuestionKind(fl validator.FieldLevel) bool {
	validKinds := []models.QuestionKind{
		models.MultipleChoice,
		models.FillBlank,
		models.Written,
		models.Ranking,
	}

	value := fl.Field().String()
	for _, validKind := range validKinds {
		if string(validKind) == value {
			return true
		}
	}
	return false
}

func ValidateAssessmentType(fl validator.FieldLevel) bool {
	validTypes := []models.AssessmentType{
		models.TypeScoring,
		models.TypeOpen,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateCandidateSource(fl validator.FieldLevel) bool {
	validSources := []models.CandidateSource{
		models.SourceManual,
		models.SourceLink,
		models.SourceLever,
	}

	value := fl.Field().String()
	for _, validSource := range validSources {
		if string(validSource) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_kind", ValidateQuestionKind)
	validate.RegisterValidation("assessment_type", ValidateAssessmentType)
	validate.RegisterValidation("candidate_source", ValidateCandidateSource)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
