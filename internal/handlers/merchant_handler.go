package handlers

import (
	"net/http"

	"expense-match/internal/dto"
	"expense-match/internal/errors"
	"expense-match/internal/models"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MerchantHandler handles canonical merchant management HTTP requests
type MerchantHandler struct {
	merchantRepo repositories.MerchantRepositoryInterface
	normalizer   *services.TextNormalizer
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantRepo repositories.MerchantRepositoryInterface, normalizer *services.TextNormalizer) *MerchantHandler {
	return &MerchantHandler{
		merchantRepo: merchantRepo,
		normalizer:   normalizer,
	}
}

// CreateMerchant registers a new canonical merchant
// @Summary Create a canonical merchant
// @Description Register a deduplicated merchant record. The name is normalized before storage.
// @Tags Merchants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateMerchantRequest true "Merchant details"
// @Success 201 {object} dto.MerchantResponse "Merchant created"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 409 {object} errors.ErrorResponse "MERCHANT_002 - Merchant already exists"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/merchants [post]
func (h *MerchantHandler) CreateMerchant(c echo.Context) error {
	var req dto.CreateMerchantRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	merchant := &models.CanonicalMerchant{
		Name:        h.normalizer.NormalizeMerchant(req.Name),
		DisplayName: req.DisplayName,
	}
	if merchant.DisplayName == "" {
		merchant.DisplayName = req.Name
	}

	if err := h.merchantRepo.Create(merchant); err != nil {
		if err == repositories.ErrMerchantExists {
			return SendError(c, errors.MerchantAlreadyExists)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.MerchantResponse{CanonicalMerchant: merchant})
}

// ListMerchants retrieves merchants ordered by usage
// @Summary List canonical merchants
// @Description List merchants most used first. Cap the list with limit.
// @Tags Merchants
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum merchants to return"
// @Success 200 {object} dto.MerchantListResponse "Merchants"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/merchants [get]
func (h *MerchantHandler) ListMerchants(c echo.Context) error {
	limit := getIntParam(c, "limit", 0)

	merchants, err := h.merchantRepo.GetMostUsed(limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MerchantListResponse{
		Merchants: merchants,
		Count:     len(merchants),
	})
}

// GetMerchant retrieves a single merchant by ID
// @Summary Get merchant by ID
// @Tags Merchants
// @Security BearerAuth
// @Produce json
// @Param merchantId path string true "Merchant ID (UUID)"
// @Success 200 {object} dto.MerchantResponse "Merchant details"
// @Failure 400 {object} errors.ErrorResponse "MERCHANT_003 - Invalid merchant ID format"
// @Failure 404 {object} errors.ErrorResponse "MERCHANT_001 - Merchant not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/merchants/{merchantId} [get]
func (h *MerchantHandler) GetMerchant(c echo.Context) error {
	merchantID, err := uuid.Parse(c.Param("merchantId"))
	if err != nil {
		return SendError(c, errors.MerchantInvalidID)
	}

	merchant, err := h.merchantRepo.GetByID(merchantID)
	if err != nil {
		if err == repositories.ErrMerchantNotFound {
			return SendError(c, errors.MerchantNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MerchantResponse{CanonicalMerchant: merchant})
}

// CreateAlias records a raw name variant for a merchant
// @Summary Record a merchant alias
// @Description Map a raw transaction string to a canonical merchant. Later lookups of the same raw name skip fuzzy matching.
// @Tags Merchants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param merchantId path string true "Merchant ID (UUID)"
// @Param request body dto.CreateAliasRequest true "Raw merchant name"
// @Success 201 {object} models.MerchantAlias "Alias created"
// @Failure 404 {object} errors.ErrorResponse "MERCHANT_001 - Merchant not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/merchants/{merchantId}/aliases [post]
func (h *MerchantHandler) CreateAlias(c echo.Context) error {
	merchantID, err := uuid.Parse(c.Param("merchantId"))
	if err != nil {
		return SendError(c, errors.MerchantInvalidID)
	}

	var req dto.CreateAliasRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	if _, err := h.merchantRepo.GetByID(merchantID); err != nil {
		if err == repositories.ErrMerchantNotFound {
			return SendError(c, errors.MerchantNotFound)
		}
		return SendSystemError(c, err)
	}

	alias := &models.MerchantAlias{
		MerchantID:     merchantID,
		RawName:        req.RawName,
		NormalizedName: h.normalizer.NormalizeMerchant(req.RawName),
	}

	if err := h.merchantRepo.CreateAlias(alias); err != nil {
		return SendSystemError(c, err)
	}

	// Alias registration counts as a confirmed match
	if err := h.merchantRepo.IncrementUsage(merchantID); err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, alias)
}

// ListAliases retrieves a merchant's known aliases
// @Summary List merchant aliases
// @Tags Merchants
// @Security BearerAuth
// @Produce json
// @Param merchantId path string true "Merchant ID (UUID)"
// @Success 200 {object} dto.AliasListResponse "Aliases"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/merchants/{merchantId}/aliases [get]
func (h *MerchantHandler) ListAliases(c echo.Context) error {
	merchantID, err := uuid.Parse(c.Param("merchantId"))
	if err != nil {
		return SendError(c, errors.MerchantInvalidID)
	}

	aliases, err := h.merchantRepo.GetAliasesByMerchantID(merchantID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AliasListResponse{
		Aliases: aliases,
		Count:   len(aliases),
	})
}

// DeleteMerchant removes a merchant and its aliases
// @Summary Delete a merchant
// @Tags Merchants
// @Security BearerAuth
// @Produce json
// @Param merchantId path string true "Merchant ID (UUID)"
// @Success 200 {object} dto.MessageResponse "Merchant deleted"
// @Failure 404 {object} errors.ErrorResponse "MERCHANT_001 - Merchant not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /admin/merchants/{merchantId} [delete]
func (h *MerchantHandler) DeleteMerchant(c echo.Context) error {
	merchantID, err := uuid.Parse(c.Param("merchantId"))
	if err != nil {
		return SendError(c, errors.MerchantInvalidID)
	}

	if err := h.merchantRepo.Delete(merchantID); err != nil {
		if err == repositories.ErrMerchantNotFound {
			return SendError(c, errors.MerchantNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Merchant deleted"})
}
