package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"expense-match/internal/models"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrMerchantExists   = errors.New("merchant already exists")
	ErrAliasNotFound    = errors.New("merchant alias not found")
)

// merchantRepository implements MerchantRepositoryInterface
type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) MerchantRepositoryInterface {
	return &merchantRepository{db: db}
}

// Create persists a new canonical merchant
func (r *merchantRepository) Create(merchant *models.CanonicalMerchant) error {
	if err := r.db.Create(merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrMerchantExists
		}
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

// GetByID retrieves a merchant by ID
func (r *merchantRepository) GetByID(id uuid.UUID) (*models.CanonicalMerchant, error) {
	var merchant models.CanonicalMerchant
	if err := r.db.Where("id = ?", id).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

// GetByName retrieves a merchant by its canonical (normalized) name
func (r *merchantRepository) GetByName(name string) (*models.CanonicalMerchant, error) {
	var merchant models.CanonicalMerchant
	if err := r.db.Where("name = ?", name).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant by name: %w", err)
	}
	return &merchant, nil
}

// GetMostUsed retrieves merchants ordered by usage count. This is the
// candidate set merchant matching scans, so popular merchants land inside
// the scan cap.
func (r *merchantRepository) GetMostUsed(limit int) ([]*models.CanonicalMerchant, error) {
	var merchants []*models.CanonicalMerchant
	query := r.db.Order("usage_count DESC, name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&merchants).Error; err != nil {
		return nil, fmt.Errorf("failed to get most used merchants: %w", err)
	}
	return merchants, nil
}

// IncrementUsage bumps the usage counter after a confirmed match
func (r *merchantRepository) IncrementUsage(id uuid.UUID) error {
	result := r.db.Model(&models.CanonicalMerchant{}).Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment merchant usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

// Update persists changes to an existing merchant
func (r *merchantRepository) Update(merchant *models.CanonicalMerchant) error {
	result := r.db.Model(&models.CanonicalMerchant{}).Where("id = ?", merchant.ID).
		Updates(map[string]interface{}{
			"name":         merchant.Name,
			"display_name": merchant.DisplayName,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrMerchantExists
		}
		return fmt.Errorf("failed to update merchant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

// Delete removes a merchant and its aliases
func (r *merchantRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("merchant_id = ?", id).Delete(&models.MerchantAlias{}).Error; err != nil {
			return fmt.Errorf("failed to delete merchant aliases: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&models.CanonicalMerchant{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete merchant: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrMerchantNotFound
		}
		return nil
	})
}

// CreateAlias records a raw-to-canonical name mapping learned from matching
func (r *merchantRepository) CreateAlias(alias *models.MerchantAlias) error {
	if err := r.db.Create(alias).Error; err != nil {
		return fmt.Errorf("failed to create merchant alias: %w", err)
	}
	return nil
}

// GetAliasByNormalizedName looks an alias up by its normalized form. Alias
// hits let callers skip fuzzy matching entirely for known raw names.
func (r *merchantRepository) GetAliasByNormalizedName(normalizedName string) (*models.MerchantAlias, error) {
	var alias models.MerchantAlias
	if err := r.db.Preload("Merchant").
		Where("normalized_name = ?", normalizedName).First(&alias).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAliasNotFound
		}
		return nil, fmt.Errorf("failed to get alias: %w", err)
	}
	return &alias, nil
}

// GetAliasesByMerchantID retrieves all known aliases for a merchant
func (r *merchantRepository) GetAliasesByMerchantID(merchantID uuid.UUID) ([]*models.MerchantAlias, error) {
	var aliases []*models.MerchantAlias
	if err := r.db.Where("merchant_id = ?", merchantID).
		Order("created_at ASC").Find(&aliases).Error; err != nil {
		return nil, fmt.Errorf("failed to get aliases for merchant: %w", err)
	}
	return aliases, nil
}

// Count returns the total number of canonical merchants
func (r *merchantRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.CanonicalMerchant{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count merchants: %w", err)
	}
	return count, nil
}
