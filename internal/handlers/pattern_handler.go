package handlers

import (
	"net/http"

	"expense-match/internal/dto"
	"expense-match/internal/errors"
	"expense-match/internal/models"
	"expense-match/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PatternHandler handles category pattern management HTTP requests
type PatternHandler struct {
	patternRepo  repositories.PatternRepositoryInterface
	categoryRepo repositories.CategoryRepositoryInterface
}

// NewPatternHandler creates a new pattern handler
func NewPatternHandler(patternRepo repositories.PatternRepositoryInterface, categoryRepo repositories.CategoryRepositoryInterface) *PatternHandler {
	return &PatternHandler{
		patternRepo:  patternRepo,
		categoryRepo: categoryRepo,
	}
}

// CreatePattern creates a new categorization pattern
// @Summary Create a categorization pattern
// @Description Register a pattern that expense text is matched against
// @Tags Patterns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePatternRequest true "Pattern details"
// @Success 201 {object} dto.PatternResponse "Pattern created"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/patterns [post]
func (h *PatternHandler) CreatePattern(c echo.Context) error {
	var req dto.CreatePatternRequest
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

	pattern := &models.CategoryPattern{
		Value:            req.Value,
		PatternType:      req.PatternType,
		CategoryID:       category.ID,
		ConfidenceWeight: req.ConfidenceWeight,
		Active:           true,
	}

	if err := h.patternRepo.Create(pattern); err != nil {
		switch err {
		case models.ErrInvalidPatternType:
			return SendError(c, errors.PatternInvalidType)
		case models.ErrInvalidPatternWeight:
			return SendError(c, errors.PatternInvalidWeight)
		case models.ErrEmptyPatternValue:
			return SendError(c, errors.ValidationRequiredField, errors.WithDetails("value"))
		case repositories.ErrPatternDuplicate:
			return SendError(c, errors.PatternDuplicate)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.PatternResponse{CategoryPattern: pattern})
}

// ListPatterns retrieves patterns, optionally filtered by type
// @Summary List categorization patterns
// @Description List active patterns ordered by confidence weight. Filter by pattern_type and cap with limit.
// @Tags Patterns
// @Security BearerAuth
// @Produce json
// @Param pattern_type query string false "Pattern type filter (merchant, keyword, description)"
// @Param limit query int false "Maximum patterns to return"
// @Success 200 {object} dto.PatternListResponse "Patterns"
// @Failure 422 {object} errors.ErrorResponse "PATTERN_002 - Invalid pattern type"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/patterns [get]
func (h *PatternHandler) ListPatterns(c echo.Context) error {
	limit := getIntParam(c, "limit", 0)
	patternType := c.QueryParam("pattern_type")

	var patterns []*models.CategoryPattern
	var err error
	if patternType != "" {
		patterns, err = h.patternRepo.GetActiveByType(patternType, limit)
	} else {
		patterns, err = h.patternRepo.GetActive(limit)
	}
	if err != nil {
		if err == models.ErrInvalidPatternType {
			return SendError(c, errors.PatternInvalidType)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PatternListResponse{
		Patterns: patterns,
		Count:    len(patterns),
	})
}

// GetPattern retrieves a single pattern by ID
// @Summary Get pattern by ID
// @Tags Patterns
// @Security BearerAuth
// @Produce json
// @Param patternId path string true "Pattern ID (UUID)"
// @Success 200 {object} dto.PatternResponse "Pattern details"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003 - Invalid pattern ID format"
// @Failure 404 {object} errors.ErrorResponse "PATTERN_001 - Pattern not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/patterns/{patternId} [get]
func (h *PatternHandler) GetPattern(c echo.Context) error {
	patternID, err := uuid.Parse(c.Param("patternId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid pattern ID"))
	}

	pattern, err := h.patternRepo.GetByID(patternID)
	if err != nil {
		if err == repositories.ErrPatternNotFound {
			return SendError(c, errors.PatternNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PatternResponse{CategoryPattern: pattern})
}

// UpdatePattern modifies a pattern's value, type, weight, or active flag
// @Summary Update a pattern
// @Tags Patterns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param patternId path string true "Pattern ID (UUID)"
// @Param request body dto.UpdatePatternRequest true "Fields to update"
// @Success 200 {object} dto.PatternResponse "Updated pattern"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 404 {object} errors.ErrorResponse "PATTERN_001 - Pattern not found"
// @Failure 422 {object} errors.ErrorResponse "PATTERN_003 - Invalid confidence weight"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/patterns/{patternId} [put]
func (h *PatternHandler) UpdatePattern(c echo.Context) error {
	patternID, err := uuid.Parse(c.Param("patternId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid pattern ID"))
	}

	var req dto.UpdatePatternRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	pattern, err := h.patternRepo.GetByID(patternID)
	if err != nil {
		if err == repositories.ErrPatternNotFound {
			return SendError(c, errors.PatternNotFound)
		}
		return SendSystemError(c, err)
	}

	if req.Value != nil {
		pattern.Value = *req.Value
	}
	if req.PatternType != nil {
		pattern.PatternType = *req.PatternType
	}
	if req.ConfidenceWeight != nil {
		pattern.ConfidenceWeight = *req.ConfidenceWeight
	}
	if req.Active != nil {
		pattern.Active = *req.Active
	}

	if err := h.patternRepo.Update(pattern); err != nil {
		switch err {
		case models.ErrInvalidPatternType:
			return SendError(c, errors.PatternInvalidType)
		case models.ErrInvalidPatternWeight:
			return SendError(c, errors.PatternInvalidWeight)
		case repositories.ErrPatternNotFound:
			return SendError(c, errors.PatternNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PatternResponse{CategoryPattern: pattern})
}

// RecordUsage reports a match outcome for pattern weight learning
// @Summary Record a pattern match outcome
// @Description Increment the pattern's usage counters. Success-rate learning reads these to tune confidence weights.
// @Tags Patterns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param patternId path string true "Pattern ID (UUID)"
// @Param request body dto.RecordPatternUsageRequest true "Match outcome"
// @Success 200 {object} dto.MessageResponse "Usage recorded"
// @Failure 404 {object} errors.ErrorResponse "PATTERN_001 - Pattern not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/patterns/{patternId}/usage [post]
func (h *PatternHandler) RecordUsage(c echo.Context) error {
	patternID, err := uuid.Parse(c.Param("patternId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid pattern ID"))
	}

	var req dto.RecordPatternUsageRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := h.patternRepo.RecordUsage(patternID, req.Success); err != nil {
		if err == repositories.ErrPatternNotFound {
			return SendError(c, errors.PatternNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Usage recorded"})
}

// DeletePattern removes a pattern permanently
// @Summary Delete a pattern
// @Tags Patterns
// @Security BearerAuth
// @Produce json
// @Param patternId path string true "Pattern ID (UUID)"
// @Success 200 {object} dto.MessageResponse "Pattern deleted"
// @Failure 404 {object} errors.ErrorResponse "PATTERN_001 - Pattern not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/patterns/{patternId} [delete]
func (h *PatternHandler) DeletePattern(c echo.Context) error {
	patternID, err := uuid.Parse(c.Param("patternId"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid pattern ID"))
	}

	if err := h.patternRepo.Delete(patternID); err != nil {
		if err == repositories.ErrPatternNotFound {
			return SendError(c, errors.PatternNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Pattern deleted"})
}
