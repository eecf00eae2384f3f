package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PatternTypeMerchant    = "merchant"
	PatternTypeKeyword     = "keyword"
	PatternTypeDescription = "description"
)

var (
	ErrInvalidPatternType   = errors.New("invalid pattern type")
	ErrEmptyPatternValue    = errors.New("pattern value cannot be empty")
	ErrInvalidPatternWeight = errors.New("pattern confidence weight must be in [0,1]")
)

// CategoryPattern is a known categorization pattern that free-form expense
// text is matched against
type CategoryPattern struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Value            string    `gorm:"type:varchar(255);not null;index;uniqueIndex:idx_category_patterns_identity" json:"value"`
	PatternType      string    `gorm:"type:varchar(20);not null;default:'merchant';uniqueIndex:idx_category_patterns_identity" json:"pattern_type"`
	CategoryID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_category_patterns_identity" json:"category_id"`
	ConfidenceWeight float64   `gorm:"not null;default:1.0" json:"confidence_weight"`
	SuccessCount     int64     `gorm:"not null;default:0" json:"success_count"`
	UsageCount       int64     `gorm:"not null;default:0" json:"usage_count"`
	// No default tag: gorm drops zero-value defaulted fields from the
	// INSERT, so Active=false would persist as active. Callers set it.
	Active           bool      `gorm:"not null;index" json:"active"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate hook for CategoryPattern
func (p *CategoryPattern) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PatternType == "" {
		p.PatternType = PatternTypeMerchant
	}
	return nil
}

// Validate checks pattern invariants before persistence
func (p *CategoryPattern) Validate() error {
	if p.Value == "" {
		return ErrEmptyPatternValue
	}
	if !IsValidPatternType(p.PatternType) {
		return ErrInvalidPatternType
	}
	if p.ConfidenceWeight < 0 || p.ConfidenceWeight > 1 {
		return ErrInvalidPatternWeight
	}
	return nil
}

// EffectiveConfidence is the multiplier applied to fused match scores for
// this pattern, clamped to [0,1]. Success-rate learning updates the weight
// out of band; the engine only reads it.
func (p *CategoryPattern) EffectiveConfidence() float64 {
	if p.ConfidenceWeight < 0 {
		return 0
	}
	if p.ConfidenceWeight > 1 {
		return 1
	}
	return p.ConfidenceWeight
}

// IsValidPatternType checks if a pattern type string is valid
func IsValidPatternType(patternType string) bool {
	switch patternType {
	case PatternTypeMerchant, PatternTypeKeyword, PatternTypeDescription:
		return true
	}
	return false
}
