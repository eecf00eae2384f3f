package dto

import (
	"expense-match/internal/models"
)

// Merchant Request DTOs

// CreateMerchantRequest represents the request payload for creating a
// canonical merchant
type CreateMerchantRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=255"`
}

// CreateAliasRequest represents the request payload for recording a raw
// merchant name variant
type CreateAliasRequest struct {
	RawName string `json:"raw_name" validate:"required,min=1,max=255"`
}

// Merchant Response DTOs

// MerchantResponse represents a single merchant in API responses
type MerchantResponse struct {
	*models.CanonicalMerchant
}

// MerchantListResponse represents a list of merchants
type MerchantListResponse struct {
	Merchants []*models.CanonicalMerchant `json:"merchants"`
	Count     int                         `json:"count"`
}

// AliasListResponse represents a merchant's known aliases
type AliasListResponse struct {
	Aliases []*models.MerchantAlias `json:"aliases"`
	Count   int                     `json:"count"`
}
