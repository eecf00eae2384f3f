package dto

import (
	"expense-match/internal/models"
)

// Pattern Request DTOs

// CreatePatternRequest represents the request payload for creating a
// categorization pattern
type CreatePatternRequest struct {
	Value            string  `json:"value" validate:"required,min=1,max=255"`
	PatternType      string  `json:"pattern_type" validate:"required,oneof=merchant keyword description"`
	CategoryName     string  `json:"category_name" validate:"required"`
	ConfidenceWeight float64 `json:"confidence_weight" validate:"min=0,max=1"`
}

// UpdatePatternRequest represents the request payload for updating a pattern
type UpdatePatternRequest struct {
	Value            *string  `json:"value,omitempty" validate:"omitempty,min=1,max=255"`
	PatternType      *string  `json:"pattern_type,omitempty" validate:"omitempty,oneof=merchant keyword description"`
	ConfidenceWeight *float64 `json:"confidence_weight,omitempty" validate:"omitempty,min=0,max=1"`
	Active           *bool    `json:"active,omitempty"`
}

// RecordPatternUsageRequest reports a match outcome for weight learning
type RecordPatternUsageRequest struct {
	Success bool `json:"success"`
}

// Pattern Response DTOs

// PatternResponse represents a single pattern in API responses
type PatternResponse struct {
	*models.CategoryPattern
}

// PatternListResponse represents a list of patterns
type PatternListResponse struct {
	Patterns []*models.CategoryPattern `json:"patterns"`
	Count    int                       `json:"count"`
}
