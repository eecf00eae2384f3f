package repositories

import (
	"github.com/google/uuid"

	"expense-match/internal/models"
)

// PatternRepositoryInterface defines the contract for category pattern persistence
type PatternRepositoryInterface interface {
	Create(pattern *models.CategoryPattern) error
	GetByID(id uuid.UUID) (*models.CategoryPattern, error)
	GetByCategoryID(categoryID uuid.UUID) ([]*models.CategoryPattern, error)
	GetActive(limit int) ([]*models.CategoryPattern, error)
	GetActiveByType(patternType string, limit int) ([]*models.CategoryPattern, error)
	Update(pattern *models.CategoryPattern) error
	RecordUsage(id uuid.UUID, success bool) error
	Deactivate(id uuid.UUID) error
	Delete(id uuid.UUID) error
	Count() (int64, error)
}

// MerchantRepositoryInterface defines the contract for canonical merchant persistence
type MerchantRepositoryInterface interface {
	Create(merchant *models.CanonicalMerchant) error
	GetByID(id uuid.UUID) (*models.CanonicalMerchant, error)
	GetByName(name string) (*models.CanonicalMerchant, error)
	GetMostUsed(limit int) ([]*models.CanonicalMerchant, error)
	IncrementUsage(id uuid.UUID) error
	Update(merchant *models.CanonicalMerchant) error
	Delete(id uuid.UUID) error
	CreateAlias(alias *models.MerchantAlias) error
	GetAliasByNormalizedName(normalizedName string) (*models.MerchantAlias, error)
	GetAliasesByMerchantID(merchantID uuid.UUID) ([]*models.MerchantAlias, error)
	Count() (int64, error)
}

// CategoryRepositoryInterface defines the contract for category persistence
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByID(id uuid.UUID) (*models.Category, error)
	GetByName(name string) (*models.Category, error)
	GetAll() ([]*models.Category, error)
	EnsureDefaults() error
}

// ExpenseRepositoryInterface defines the contract for expense persistence
type ExpenseRepositoryInterface interface {
	Create(expense *models.Expense) error
	CreateBatch(expenses []*models.Expense) error
	GetByID(id uuid.UUID) (*models.Expense, error)
	GetUncategorized(limit int) ([]*models.Expense, error)
	AssignCategory(id uuid.UUID, categoryID uuid.UUID, categoryName string) error
	GetByMerchant(normalizedMerchant string, limit int) ([]*models.Expense, error)
	Count() (int64, error)
}
