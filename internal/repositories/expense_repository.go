package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"expense-match/internal/models"
)

var ErrExpenseNotFound = errors.New("expense not found")

// expenseRepository implements ExpenseRepositoryInterface
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepositoryInterface {
	return &expenseRepository{db: db}
}

// Create persists a new expense
func (r *expenseRepository) Create(expense *models.Expense) error {
	if err := r.db.Create(expense).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// CreateBatch persists a batch of imported expenses in one insert
func (r *expenseRepository) CreateBatch(expenses []*models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	if err := r.db.Create(expenses).Error; err != nil {
		return fmt.Errorf("failed to create expense batch: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID
func (r *expenseRepository) GetByID(id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.Where("id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &expense, nil
}

// GetUncategorized retrieves expenses without an assigned category, newest
// first, for the categorization worklist
func (r *expenseRepository) GetUncategorized(limit int) ([]*models.Expense, error) {
	var expenses []*models.Expense
	query := r.db.Where("category_id IS NULL").Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to get uncategorized expenses: %w", err)
	}
	return expenses, nil
}

// AssignCategory records a categorization decision on an expense
func (r *expenseRepository) AssignCategory(id uuid.UUID, categoryID uuid.UUID, categoryName string) error {
	result := r.db.Model(&models.Expense{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"category_id": categoryID,
			"category":    categoryName,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to assign category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// GetByMerchant retrieves expenses carrying a given normalized merchant name
func (r *expenseRepository) GetByMerchant(normalizedMerchant string, limit int) ([]*models.Expense, error) {
	var expenses []*models.Expense
	query := r.db.Where("normalized_merchant = ?", normalizedMerchant).Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to get expenses by merchant: %w", err)
	}
	return expenses, nil
}

// Count returns the total number of expenses
func (r *expenseRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Expense{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}
