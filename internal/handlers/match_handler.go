package handlers

import (
	"net/http"

	"expense-match/internal/dto"
	"expense-match/internal/errors"
	"expense-match/internal/models"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultMaxBatchSize = 100

// MatchHandler handles fuzzy matching HTTP requests
type MatchHandler struct {
	matcher      services.FuzzyMatcherInterface
	patternRepo  repositories.PatternRepositoryInterface
	merchantRepo repositories.MerchantRepositoryInterface
	normalizer   *services.TextNormalizer
	maxBatchSize int
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(
	matcher services.FuzzyMatcherInterface,
	patternRepo repositories.PatternRepositoryInterface,
	merchantRepo repositories.MerchantRepositoryInterface,
	normalizer *services.TextNormalizer,
	maxBatchSize int,
) *MatchHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = defaultMaxBatchSize
	}
	return &MatchHandler{
		matcher:      matcher,
		patternRepo:  patternRepo,
		merchantRepo: merchantRepo,
		normalizer:   normalizer,
		maxBatchSize: maxBatchSize,
	}
}

// Match scores text against caller-supplied candidates
// @Summary Fuzzy match against ad-hoc candidates
// @Description Score text against a list of candidate strings and return matches above the confidence threshold, best first
// @Tags Matching
// @Accept json
// @Produce json
// @Param request body dto.MatchRequest true "Match request"
// @Success 200 {object} dto.MatchResponse "Match result"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /match [post]
func (h *MatchHandler) Match(c echo.Context) error {
	var req dto.MatchRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	candidates := make([]models.Candidate, len(req.Candidates))
	for i, text := range req.Candidates {
		candidates[i] = models.NewTextCandidate(text)
	}

	result := h.matcher.Match(c.Request().Context(), req.Text, candidates, req.Overrides())
	return c.JSON(http.StatusOK, dto.MatchResponse{Result: result})
}

// MatchPatterns categorizes expense text against active category patterns
// @Summary Match text against category patterns
// @Description Score expense text against the active categorization patterns, applying word-level fallback and per-pattern confidence weights
// @Tags Matching
// @Accept json
// @Produce json
// @Param request body dto.PatternMatchRequest true "Pattern match request"
// @Success 200 {object} dto.MatchResponse "Match result"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /match/patterns [post]
func (h *MatchHandler) MatchPatterns(c echo.Context) error {
	var req dto.PatternMatchRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	patterns, err := h.loadPatterns(req.PatternType)
	if err != nil {
		return SendSystemError(c, err)
	}

	result := h.matcher.MatchPattern(c.Request().Context(), req.Text, patterns, req.Overrides())
	return c.JSON(http.StatusOK, dto.MatchResponse{Result: result})
}

// MatchMerchants resolves a raw merchant string to a canonical merchant
// @Summary Resolve a raw merchant name
// @Description Match a raw merchant string against canonical merchants, boosting popular ones. Known aliases short-circuit to an exact hit.
// @Tags Matching
// @Accept json
// @Produce json
// @Param request body dto.MerchantMatchRequest true "Merchant match request"
// @Success 200 {object} dto.MatchResponse "Match result"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /match/merchants [post]
func (h *MatchHandler) MatchMerchants(c echo.Context) error {
	var req dto.MerchantMatchRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	// A learned alias resolves the name without fuzzy matching
	normalized := h.normalizer.NormalizeMerchant(req.Name)
	if alias, err := h.merchantRepo.GetAliasByNormalizedName(normalized); err == nil {
		match := models.MatchItem{
			ID:    alias.MerchantID.String(),
			Text:  alias.Merchant.Name,
			Score: 1.0,
		}
		result := models.NewMatchResult(req.Name, []models.MatchItem{match}, []string{"alias"})
		return c.JSON(http.StatusOK, dto.MatchResponse{Result: result})
	}

	merchants, err := h.merchantRepo.GetMostUsed(0)
	if err != nil {
		return SendSystemError(c, err)
	}

	result := h.matcher.MatchMerchant(c.Request().Context(), req.Name, merchants, req.Overrides())
	return c.JSON(http.StatusOK, dto.MatchResponse{Result: result})
}

// BatchMatch runs Match for each text against one candidate set
// @Summary Batch fuzzy match
// @Description Score multiple texts against one candidate set. Results preserve input order.
// @Tags Matching
// @Accept json
// @Produce json
// @Param request body dto.BatchMatchRequest true "Batch match request"
// @Success 200 {object} dto.BatchMatchResponse "Per-text match results"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /match/batch [post]
func (h *MatchHandler) BatchMatch(c echo.Context) error {
	var req dto.BatchMatchRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		if len(req.Texts) > h.maxBatchSize {
			return SendError(c, errors.MatchBatchTooLarge)
		}
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	candidates := make([]models.Candidate, len(req.Candidates))
	for i, text := range req.Candidates {
		candidates[i] = models.NewTextCandidate(text)
	}

	results := h.matcher.BatchMatch(c.Request().Context(), req.Texts, candidates, req.Overrides())
	return c.JSON(http.StatusOK, dto.BatchMatchResponse{
		Results: results,
		Count:   len(results),
	})
}

// Similarity scores two strings with one algorithm
// @Summary Single-algorithm similarity score
// @Description Score two strings with one similarity algorithm. Set raw to skip text normalization.
// @Tags Matching
// @Accept json
// @Produce json
// @Param request body dto.SimilarityRequest true "Similarity request"
// @Success 200 {object} dto.SimilarityResponse "Similarity score"
// @Failure 400 {object} errors.ErrorResponse "MATCH_003 - Unknown algorithm"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /similarity [post]
func (h *MatchHandler) Similarity(c echo.Context) error {
	var req dto.SimilarityRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	var score float64
	var err error
	if req.Raw {
		score, err = h.matcher.CalculateSimilarityRaw(req.Text1, req.Text2, req.Algorithm)
	} else {
		score, err = h.matcher.CalculateSimilarity(req.Text1, req.Text2, req.Algorithm)
	}
	if err != nil {
		return SendError(c, errors.MatchUnknownAlgorithm, errors.WithDetails(err.Error()))
	}

	return c.JSON(http.StatusOK, dto.SimilarityResponse{
		Text1:     req.Text1,
		Text2:     req.Text2,
		Algorithm: req.Algorithm,
		Score:     score,
	})
}

func (h *MatchHandler) loadPatterns(patternType string) ([]*models.CategoryPattern, error) {
	if patternType != "" {
		return h.patternRepo.GetActiveByType(patternType, 0)
	}
	return h.patternRepo.GetActive(0)
}
