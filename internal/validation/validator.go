package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("category_name", validateCategoryName)
	_ = v.RegisterValidation("pattern_type", validatePatternType)
	_ = v.RegisterValidation("match_algorithm", validateMatchAlgorithm)
	_ = v.RegisterValidation("decimal_amount", validateDecimalAmount)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateCategoryName validates that a category name is one of the fixed set
func validateCategoryName(fl validator.FieldLevel) bool {
	name := strings.ToUpper(fl.Field().String())
	validNames := map[string]bool{
		"GROCERIES":      true,
		"DINING":         true,
		"TRANSPORTATION": true,
		"ENTERTAINMENT":  true,
		"UTILITIES":      true,
		"SHOPPING":       true,
		"HEALTHCARE":     true,
		"TRAVEL":         true,
		"EDUCATION":      true,
		"PERSONAL_CARE":  true,
		"HOME":           true,
		"INCOME":         true,
		"OTHER":          true,
	}
	return validNames[name]
}

// validatePatternType validates that pattern type is one of the allowed types
func validatePatternType(fl validator.FieldLevel) bool {
	patternType := strings.ToLower(fl.Field().String())
	validTypes := map[string]bool{
		"merchant":    true,
		"keyword":     true,
		"description": true,
	}
	return validTypes[patternType]
}

// validateMatchAlgorithm validates that an algorithm name is supported
func validateMatchAlgorithm(fl validator.FieldLevel) bool {
	algorithm := strings.ToLower(fl.Field().String())
	validAlgorithms := map[string]bool{
		"jaro_winkler": true,
		"levenshtein":  true,
		"trigram":      true,
		"phonetic":     true,
	}
	return validAlgorithms[algorithm]
}

// validateDecimalAmount validates that a string amount parses as a decimal
// with at most 2 fractional digits
func validateDecimalAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}

	return amount.Exponent() >= -2
}
