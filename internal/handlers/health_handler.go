package handlers

import (
	"net/http"
	"time"

	"expense-match/internal/errors"
	"expense-match/internal/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db      *gorm.DB
	matcher services.FuzzyMatcherInterface
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(db *gorm.DB, matcher services.FuzzyMatcherInterface) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, matcher: matcher}
}

// HealthCheck adds the health check endpoint
// @Summary Health check
// @Description Check API, database, and matching engine status
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,time=string} "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Service unavailable"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	// Check database connectivity by getting the underlying sql.DB
	sqlDB, err := h.db.DB()
	if err != nil {
		return h.unavailable(c, "Database connection failed")
	}

	if err := sqlDB.Ping(); err != nil {
		return h.unavailable(c, "Database connection failed")
	}

	// Probe the matching engine with a self-match
	if !h.matcher.Healthy(c.Request().Context()) {
		return h.unavailable(c, "Matching engine degraded")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthCheckHandler) unavailable(c echo.Context, details string) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(
		errors.SystemServiceUnavailable,
		traceID,
		errors.WithDetails(details),
	)
	return c.JSON(http.StatusServiceUnavailable, errorResponse)
}
