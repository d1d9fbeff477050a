// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("slug", validateSlug)
	validate.RegisterValidation("asset_kind", validateAssetKind)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// empty slugs are allowed; the service derives one from the title
func validateSlug(fl validator.FieldLevel) bool {
	slug := fl.Field().String()
	return slug == "" || IsSlug(slug)
}

func validateAssetKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "image", "video", "pdf":
		return true
	}
	return false
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "slug":
		return "Slug may only contain lowercase letters, numbers and single hyphens"
	case "asset_kind":
		return e.Field() + " must be image, video or pdf"
	default:
		return e.Field() + " is invalid"
	}
}
