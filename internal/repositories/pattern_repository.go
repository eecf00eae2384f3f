package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"expense-match/internal/models"
)

var (
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrPatternDuplicate = errors.New("pattern already exists for category")
)

// patternRepository implements PatternRepositoryInterface
type patternRepository struct {
	db *gorm.DB
}

// NewPatternRepository creates a new pattern repository
func NewPatternRepository(db *gorm.DB) PatternRepositoryInterface {
	return &patternRepository{db: db}
}

// Create persists a new pattern after validating it
func (r *patternRepository) Create(pattern *models.CategoryPattern) error {
	if err := pattern.Validate(); err != nil {
		return err
	}
	if err := r.db.Create(pattern).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrPatternDuplicate
		}
		return fmt.Errorf("failed to create pattern: %w", err)
	}
	return nil
}

// GetByID retrieves a pattern by ID
func (r *patternRepository) GetByID(id uuid.UUID) (*models.CategoryPattern, error) {
	var pattern models.CategoryPattern
	if err := r.db.Where("id = ?", id).First(&pattern).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}
	return &pattern, nil
}

// GetByCategoryID retrieves all patterns for a category, active first
func (r *patternRepository) GetByCategoryID(categoryID uuid.UUID) ([]*models.CategoryPattern, error) {
	var patterns []*models.CategoryPattern
	if err := r.db.Where("category_id = ?", categoryID).
		Order("active DESC, confidence_weight DESC").Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to get patterns for category: %w", err)
	}
	return patterns, nil
}

// GetActive retrieves active patterns ordered by confidence weight, most
// trusted first, so the matcher scans the strongest candidates inside its
// candidate cap.
func (r *patternRepository) GetActive(limit int) ([]*models.CategoryPattern, error) {
	var patterns []*models.CategoryPattern
	query := r.db.Where("active = ?", true).Order("confidence_weight DESC, usage_count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to get active patterns: %w", err)
	}
	return patterns, nil
}

// GetActiveByType retrieves active patterns of one type
func (r *patternRepository) GetActiveByType(patternType string, limit int) ([]*models.CategoryPattern, error) {
	if !models.IsValidPatternType(patternType) {
		return nil, models.ErrInvalidPatternType
	}

	var patterns []*models.CategoryPattern
	query := r.db.Where("active = ? AND pattern_type = ?", true, patternType).
		Order("confidence_weight DESC, usage_count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("failed to get active patterns by type: %w", err)
	}
	return patterns, nil
}

// Update persists changes to an existing pattern
func (r *patternRepository) Update(pattern *models.CategoryPattern) error {
	if err := pattern.Validate(); err != nil {
		return err
	}
	result := r.db.Model(&models.CategoryPattern{}).Where("id = ?", pattern.ID).
		Updates(map[string]interface{}{
			"value":             pattern.Value,
			"pattern_type":      pattern.PatternType,
			"confidence_weight": pattern.ConfidenceWeight,
			"active":            pattern.Active,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update pattern: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPatternNotFound
	}
	return nil
}

// RecordUsage increments the usage counters after a match outcome is known.
// Success-rate learning reads these counters to tune confidence weights.
func (r *patternRepository) RecordUsage(id uuid.UUID, success bool) error {
	updates := map[string]interface{}{
		"usage_count": gorm.Expr("usage_count + 1"),
	}
	if success {
		updates["success_count"] = gorm.Expr("success_count + 1")
	}

	result := r.db.Model(&models.CategoryPattern{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to record pattern usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPatternNotFound
	}
	return nil
}

// Deactivate soft-disables a pattern without losing its learned counters
func (r *patternRepository) Deactivate(id uuid.UUID) error {
	result := r.db.Model(&models.CategoryPattern{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate pattern: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPatternNotFound
	}
	return nil
}

// Delete removes a pattern permanently
func (r *patternRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.CategoryPattern{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete pattern: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPatternNotFound
	}
	return nil
}

// Count returns the total number of patterns
func (r *patternRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.CategoryPattern{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count patterns: %w", err)
	}
	return count, nil
}
