package handlers

import (
	"net/http"

	"expense-match/internal/dto"
	"expense-match/internal/errors"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminHandler handles matcher administration HTTP requests
type AdminHandler struct {
	matcher      services.FuzzyMatcherInterface
	generator    services.CandidateGeneratorInterface
	merchantRepo repositories.MerchantRepositoryInterface
	patternRepo  repositories.PatternRepositoryInterface
	categoryRepo repositories.CategoryRepositoryInterface
	expenseRepo  repositories.ExpenseRepositoryInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	matcher services.FuzzyMatcherInterface,
	generator services.CandidateGeneratorInterface,
	merchantRepo repositories.MerchantRepositoryInterface,
	patternRepo repositories.PatternRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	expenseRepo repositories.ExpenseRepositoryInterface,
) *AdminHandler {
	return &AdminHandler{
		matcher:      matcher,
		generator:    generator,
		merchantRepo: merchantRepo,
		patternRepo:  patternRepo,
		categoryRepo: categoryRepo,
		expenseRepo:  expenseRepo,
	}
}

// GetMatcherMetrics exposes the engine's rolling performance metrics
// @Summary Matcher metrics
// @Description Per-operation latency percentiles and cache hit rates over the rolling window
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MatcherMetricsResponse "Engine metrics"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Router /admin/matcher/metrics [get]
func (h *AdminHandler) GetMatcherMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.MatcherMetricsResponse{
		Metrics: h.matcher.Metrics(),
	})
}

// ResetMatcher clears the engine's caches and rolling metrics
// @Summary Reset the matching engine
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse "Matcher reset"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Router /admin/matcher/reset [post]
func (h *AdminHandler) ResetMatcher(c echo.Context) error {
	h.matcher.Reset()
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Matcher reset"})
}

// ClearCache clears the result and normalizer caches without touching metrics
// @Summary Clear matcher caches
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse "Caches cleared"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Router /admin/matcher/cache/clear [post]
func (h *AdminHandler) ClearCache(c echo.Context) error {
	h.matcher.ClearCache()
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Caches cleared"})
}

// Seed populates the database with generated development data
// @Summary Seed development data
// @Description Generate fake merchants, patterns, and expenses for development and load testing
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SeedRequest true "How much data to generate"
// @Success 201 {object} dto.SeedResponse "Seeded data counts"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/dev/seed [post]
func (h *AdminHandler) Seed(c echo.Context) error {
	var req dto.SeedRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	if err := h.categoryRepo.EnsureDefaults(); err != nil {
		return SendSystemError(c, err)
	}

	merchantCount := 0
	for _, merchant := range h.generator.GenerateMerchants(req.Merchants) {
		if err := h.merchantRepo.Create(merchant); err != nil {
			if err == repositories.ErrMerchantExists {
				continue
			}
			return SendSystemError(c, err)
		}
		merchantCount++
	}

	patternCount := 0
	if req.Patterns > 0 {
		categories, err := h.categoryRepo.GetAll()
		if err != nil {
			return SendSystemError(c, err)
		}
		perCategory := req.Patterns / len(categories)
		if perCategory == 0 {
			perCategory = 1
		}
		for _, category := range categories {
			for _, pattern := range h.generator.GeneratePatterns(category.ID, perCategory) {
				if err := h.patternRepo.Create(pattern); err != nil {
					if err == repositories.ErrPatternDuplicate {
						continue
					}
					return SendSystemError(c, err)
				}
				patternCount++
				if patternCount >= req.Patterns {
					break
				}
			}
			if patternCount >= req.Patterns {
				break
			}
		}
	}

	expenses := h.generator.GenerateExpenses(req.Expenses)
	if err := h.expenseRepo.CreateBatch(expenses); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.SeedResponse{
		Merchants: merchantCount,
		Patterns:  patternCount,
		Expenses:  len(expenses),
		Message:   "Development data seeded",
	})
}
