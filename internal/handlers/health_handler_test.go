package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense-match/internal/cache"
	"expense-match/internal/database"
	"expense-match/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// HealthCheckHandlerSuite defines the test suite for HealthCheckHandler
type HealthCheckHandlerSuite struct {
	suite.Suite
	db      *database.DB
	handler *HealthCheckHandler
	echo    *echo.Echo
}

// SetupTest runs before each test in the suite
func (s *HealthCheckHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	options := services.DefaultMatcherOptions()
	options.Timeout = time.Second
	matcher := services.NewFuzzyMatcher(
		options,
		nil,
		cache.NewMemoryStore(time.Minute, time.Minute),
		nil,
		nil,
	)

	s.handler = NewHealthCheckHandler(s.db.DB, matcher)
	s.echo = echo.New()
}

// TearDownTest runs after each test in the suite
func (s *HealthCheckHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestHealthCheckHandlerSuite runs the test suite
func TestHealthCheckHandlerSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckHandlerSuite))
}

// Test HealthCheck functionality
func (s *HealthCheckHandlerSuite) TestHealthCheck() {
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	err := s.handler.HealthCheck(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp map[string]string
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.Equal("healthy", resp["status"])
	s.NotEmpty(resp["time"])
}
