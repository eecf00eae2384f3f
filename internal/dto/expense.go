package dto

import (
	"expense-match/internal/models"
)

// Expense Request DTOs

// CreateExpenseRequest represents the request payload for importing one expense
type CreateExpenseRequest struct {
	MerchantName string `json:"merchant_name,omitempty" validate:"omitempty,max=255"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Amount       string `json:"amount" validate:"required,decimal_amount"`
	OccurredAt   string `json:"occurred_at,omitempty"`
}

// ImportExpensesRequest represents a batch expense import
type ImportExpensesRequest struct {
	Expenses []CreateExpenseRequest `json:"expenses" validate:"required,min=1,max=500,dive"`
}

// CategorizeExpenseRequest assigns a category to an expense, either from a
// reviewed match or manually
type CategorizeExpenseRequest struct {
	CategoryName string `json:"category_name" validate:"required"`
}

// Expense Response DTOs

// ExpenseResponse represents a single expense in API responses
type ExpenseResponse struct {
	*models.Expense
}

// ExpenseListResponse represents a list of expenses
type ExpenseListResponse struct {
	Expenses []*models.Expense `json:"expenses"`
	Count    int               `json:"count"`
}

// CategorizeResponse carries the categorization decision along with the
// match evidence behind it
type CategorizeResponse struct {
	Expense *models.Expense     `json:"expense"`
	Result  *models.MatchResult `json:"result,omitempty"`
}
