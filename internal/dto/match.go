package dto

import (
	"time"

	"expense-match/internal/models"
	"expense-match/internal/services"
)

// Match Request DTOs

// MatchRequest represents a fuzzy match request against ad-hoc candidates
type MatchRequest struct {
	Text          string   `json:"text" validate:"required,min=1,max=500"`
	Candidates    []string `json:"candidates" validate:"required,min=1,max=1000,dive,min=1,max=500"`
	Algorithms    []string `json:"algorithms,omitempty" validate:"omitempty,dive,oneof=jaro_winkler levenshtein trigram phonetic"`
	MinConfidence *float64 `json:"min_confidence,omitempty" validate:"omitempty,min=0,max=1"`
	MaxResults    *int     `json:"max_results,omitempty" validate:"omitempty,min=1,max=100"`
	TimeoutMS     *int     `json:"timeout_ms,omitempty" validate:"omitempty,min=1,max=60000"`
	EnableCaching *bool    `json:"enable_caching,omitempty"`
	NormalizeText *bool    `json:"normalize_text,omitempty"`
}

// PatternMatchRequest represents a categorization request for expense text
type PatternMatchRequest struct {
	Text            string   `json:"text" validate:"required,min=1,max=500"`
	PatternType     string   `json:"pattern_type,omitempty" validate:"omitempty,oneof=merchant keyword description"`
	Algorithms      []string `json:"algorithms,omitempty" validate:"omitempty,dive,oneof=jaro_winkler levenshtein trigram phonetic"`
	MinConfidence   *float64 `json:"min_confidence,omitempty" validate:"omitempty,min=0,max=1"`
	MaxResults      *int     `json:"max_results,omitempty" validate:"omitempty,min=1,max=100"`
	UseWordMatching *bool    `json:"use_word_matching,omitempty"`
}

// MerchantMatchRequest represents a raw merchant name resolution request
type MerchantMatchRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=255"`
	MinConfidence *float64 `json:"min_confidence,omitempty" validate:"omitempty,min=0,max=1"`
	MaxResults    *int     `json:"max_results,omitempty" validate:"omitempty,min=1,max=100"`
}

// BatchMatchRequest represents a batch of texts matched against one
// candidate set
type BatchMatchRequest struct {
	Texts         []string `json:"texts" validate:"required,min=1,max=100,dive,min=1,max=500"`
	Candidates    []string `json:"candidates" validate:"required,min=1,max=1000,dive,min=1,max=500"`
	MinConfidence *float64 `json:"min_confidence,omitempty" validate:"omitempty,min=0,max=1"`
	MaxResults    *int     `json:"max_results,omitempty" validate:"omitempty,min=1,max=100"`
}

// SimilarityRequest represents a single-algorithm similarity probe
type SimilarityRequest struct {
	Text1     string `json:"text1" validate:"required,min=1,max=500"`
	Text2     string `json:"text2" validate:"required,min=1,max=500"`
	Algorithm string `json:"algorithm" validate:"required,oneof=jaro_winkler levenshtein trigram phonetic"`
	Raw       bool   `json:"raw,omitempty"`
}

// Overrides converts request-level tuning fields into engine overrides
func (r *MatchRequest) Overrides() *services.MatchOverrides {
	o := &services.MatchOverrides{
		Algorithms:    r.Algorithms,
		MinConfidence: r.MinConfidence,
		MaxResults:    r.MaxResults,
		EnableCaching: r.EnableCaching,
		NormalizeText: r.NormalizeText,
	}
	if r.TimeoutMS != nil {
		timeout := time.Duration(*r.TimeoutMS) * time.Millisecond
		o.Timeout = &timeout
	}
	return o
}

// Overrides converts request-level tuning fields into engine overrides
func (r *PatternMatchRequest) Overrides() *services.MatchOverrides {
	return &services.MatchOverrides{
		Algorithms:      r.Algorithms,
		MinConfidence:   r.MinConfidence,
		MaxResults:      r.MaxResults,
		UseWordMatching: r.UseWordMatching,
	}
}

// Overrides converts request-level tuning fields into engine overrides
func (r *MerchantMatchRequest) Overrides() *services.MatchOverrides {
	return &services.MatchOverrides{
		MinConfidence: r.MinConfidence,
		MaxResults:    r.MaxResults,
	}
}

// Overrides converts request-level tuning fields into engine overrides
func (r *BatchMatchRequest) Overrides() *services.MatchOverrides {
	return &services.MatchOverrides{
		MinConfidence: r.MinConfidence,
		MaxResults:    r.MaxResults,
	}
}

// Match Response DTOs

// MatchResponse wraps a match result for API responses
type MatchResponse struct {
	Result *models.MatchResult `json:"result"`
}

// BatchMatchResponse wraps per-text results, preserving input order
type BatchMatchResponse struct {
	Results []*models.MatchResult `json:"results"`
	Count   int                   `json:"count"`
}

// SimilarityResponse carries a single-algorithm similarity score
type SimilarityResponse struct {
	Text1     string  `json:"text1"`
	Text2     string  `json:"text2"`
	Algorithm string  `json:"algorithm"`
	Score     float64 `json:"score"`
}
