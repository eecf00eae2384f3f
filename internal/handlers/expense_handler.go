package handlers

import (
	"net/http"
	"time"

	"expense-match/internal/dto"
	"expense-match/internal/errors"
	"expense-match/internal/models"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense import and categorization HTTP requests
type ExpenseHandler struct {
	expenseRepo  repositories.ExpenseRepositoryInterface
	categoryRepo repositories.CategoryRepositoryInterface
	patternRepo  repositories.PatternRepositoryInterface
	matcher      services.FuzzyMatcherInterface
	normalizer   *services.TextNormalizer
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(
	expenseRepo repositories.ExpenseRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	patternRepo repositories.PatternRepositoryInterface,
	matcher services.FuzzyMatcherInterface,
	normalizer *services.TextNormalizer,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		patternRepo:  patternRepo,
		matcher:      matcher,
		normalizer:   normalizer,
	}
}

// ImportExpenses imports a batch of raw expenses
// @Summary Import expenses
// @Description Import a batch of raw expense rows. Merchant names are normalized on the way in; categorization happens separately.
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body dto.ImportExpensesRequest true "Expenses to import"
// @Success 201 {object} dto.ExpenseListResponse "Imported expenses"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /expenses/import [post]
func (h *ExpenseHandler) ImportExpenses(c echo.Context) error {
	var req dto.ImportExpensesRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	expenses := make([]*models.Expense, 0, len(req.Expenses))
	for _, item := range req.Expenses {
		amount, err := decimal.NewFromString(item.Amount)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid amount: "+item.Amount))
		}

		expense := &models.Expense{
			MerchantName:       item.MerchantName,
			NormalizedMerchant: h.normalizer.NormalizeMerchant(item.MerchantName),
			Description:        item.Description,
			Amount:             amount,
		}
		if item.OccurredAt != "" {
			occurredAt, err := time.Parse(time.RFC3339, item.OccurredAt)
			if err != nil {
				return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid occurred_at: "+item.OccurredAt))
			}
			expense.OccurredAt = occurredAt
		}
		expenses = append(expenses, expense)
	}

	if err := h.expenseRepo.CreateBatch(expenses); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.ExpenseListResponse{
		Expenses: expenses,
		Count:    len(expenses),
	})
}

// ListUncategorized retrieves expenses awaiting categorization
// @Summary List uncategorized expenses
// @Description List expenses without a category, newest first
// @Tags Expenses
// @Produce json
// @Param limit query int false "Maximum expenses to return" default(50)
// @Success 200 {object} dto.ExpenseListResponse "Uncategorized expenses"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /expenses/uncategorized [get]
func (h *ExpenseHandler) ListUncategorized(c echo.Context) error {
	limit := getIntParam(c, "limit", 50)

	expenses, err := h.expenseRepo.GetUncategorized(limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ExpenseListResponse{
		Expenses: expenses,
		Count:    len(expenses),
	})
}

// Categorize manually assigns a category to an expense
// @Summary Categorize an expense
// @Description Assign a category to an expense from a reviewed match or manual decision
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expenseId path string true "Expense ID (UUID)"
// @Param request body dto.CategorizeExpenseRequest true "Category assignment"
// @Success 200 {object} dto.CategorizeResponse "Categorized expense"
// @Failure 400 {object} errors.ErrorResponse "CATEGORY_002 - Invalid category name"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /expenses/{expenseId}/categorize [post]
func (h *ExpenseHandler) Categorize(c echo.Context) error {
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid expense ID"))
	}

	var req dto.CategorizeExpenseRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	if !models.IsValidCategoryName(req.CategoryName) {
		return SendError(c, errors.CategoryInvalidName, errors.WithDetails(req.CategoryName))
	}

	category, err := h.categoryRepo.GetByName(req.CategoryName)
	if err != nil {
		if err == repositories.ErrCategoryNotFound {
			return SendError(c, errors.CategoryNotFound)
		}
		return SendSystemError(c, err)
	}

	if err := h.expenseRepo.AssignCategory(expenseID, category.ID, category.Name); err != nil {
		if err == repositories.ErrExpenseNotFound {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Expense not found"))
		}
		return SendSystemError(c, err)
	}

	expense, err := h.expenseRepo.GetByID(expenseID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CategorizeResponse{Expense: expense})
}

// AutoCategorize matches an expense against category patterns and assigns
// the best category when confidence is high enough
// @Summary Auto-categorize an expense
// @Description Match the expense's merchant text against active category patterns. The best match above the threshold is assigned; otherwise the expense stays uncategorized and the evidence is returned for review.
// @Tags Expenses
// @Produce json
// @Param expenseId path string true "Expense ID (UUID)"
// @Success 200 {object} dto.CategorizeResponse "Categorization outcome with match evidence"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003 - Invalid expense ID format"
// @Failure 404 {object} errors.ErrorResponse "MATCH_004 - Expense has no matchable text"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /expenses/{expenseId}/auto-categorize [post]
func (h *ExpenseHandler) AutoCategorize(c echo.Context) error {
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid expense ID"))
	}

	expense, err := h.expenseRepo.GetByID(expenseID)
	if err != nil {
		if err == repositories.ErrExpenseNotFound {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Expense not found"))
		}
		return SendSystemError(c, err)
	}

	text := expense.MerchantName
	if text == "" {
		text = expense.Description
	}
	if text == "" {
		return SendError(c, errors.MatchEmptyQuery)
	}

	patterns, err := h.patternRepo.GetActive(0)
	if err != nil {
		return SendSystemError(c, err)
	}

	result := h.matcher.MatchPattern(c.Request().Context(), text, patterns, nil)

	best := result.Best()
	if best == nil {
		// No confident match; hand the evidence back for manual review
		return c.JSON(http.StatusOK, dto.CategorizeResponse{Expense: expense, Result: result})
	}

	pattern := h.patternFromMatch(patterns, best)
	if pattern == nil {
		return c.JSON(http.StatusOK, dto.CategorizeResponse{Expense: expense, Result: result})
	}

	category, err := h.categoryRepo.GetByID(pattern.CategoryID)
	if err != nil {
		return SendSystemError(c, err)
	}

	if err := h.expenseRepo.AssignCategory(expense.ID, category.ID, category.Name); err != nil {
		return SendSystemError(c, err)
	}

	// The assignment is an unconfirmed use; success is reported when a
	// reviewer confirms it.
	if err := h.patternRepo.RecordUsage(pattern.ID, false); err != nil {
		return SendSystemError(c, err)
	}

	expense, err = h.expenseRepo.GetByID(expense.ID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.CategorizeResponse{Expense: expense, Result: result})
}

func (h *ExpenseHandler) patternFromMatch(patterns []*models.CategoryPattern, match *models.MatchItem) *models.CategoryPattern {
	for _, pattern := range patterns {
		if pattern != nil && pattern.ID.String() == match.ID {
			return pattern
		}
	}
	return nil
}
