package dto

import (
	"expense-match/internal/services"
)

// Admin Request DTOs

// SeedRequest controls how much fake data the dev seeder generates
type SeedRequest struct {
	Merchants int `json:"merchants" validate:"min=0,max=10000"`
	Patterns  int `json:"patterns" validate:"min=0,max=10000"`
	Expenses  int `json:"expenses" validate:"min=0,max=10000"`
}

// Admin Response DTOs

// MatcherMetricsResponse exposes the engine's rolling metrics
type MatcherMetricsResponse struct {
	Metrics services.MetricsSummary `json:"metrics"`
}

// SeedResponse reports how much fake data was created
type SeedResponse struct {
	Merchants int    `json:"merchants"`
	Patterns  int    `json:"patterns"`
	Expenses  int    `json:"expenses"`
	Message   string `json:"message"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
