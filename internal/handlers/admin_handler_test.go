package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense-match/internal/cache"
	"expense-match/internal/database"
	"expense-match/internal/dto"
	"expense-match/internal/models"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// AdminHandlerSuite defines the test suite for AdminHandler
type AdminHandlerSuite struct {
	suite.Suite
	db      *database.DB
	matcher services.FuzzyMatcherInterface
	handler *AdminHandler
	echo    *echo.Echo
}

// SetupTest runs before each test in the suite
func (s *AdminHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())

	options := services.DefaultMatcherOptions()
	options.Timeout = time.Second
	s.matcher = services.NewFuzzyMatcher(
		options,
		nil,
		cache.NewMemoryStore(time.Minute, time.Minute),
		nil,
		nil,
	)

	s.handler = NewAdminHandler(
		s.matcher,
		services.NewCandidateGenerator(),
		repositories.NewMerchantRepository(s.db.DB),
		repositories.NewPatternRepository(s.db.DB),
		repositories.NewCategoryRepository(s.db.DB),
		repositories.NewExpenseRepository(s.db.DB),
	)

	s.echo = echo.New()
	s.echo.Validator = &CustomValidator{validator: validator.New()}
}

// TearDownTest runs after each test in the suite
func (s *AdminHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestAdminHandlerSuite runs the test suite
func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

func (s *AdminHandlerSuite) createContext(method, path string, body []byte) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewBuffer(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

// Test GetMatcherMetrics functionality
func (s *AdminHandlerSuite) TestGetMatcherMetrics() {
	// Run a match so there is something to report
	s.matcher.Match(context.Background(), "starbucks", []models.Candidate{models.NewTextCandidate("starbucks")}, nil)

	c, rec := s.createContext("GET", "/api/v1/admin/matcher/metrics", nil)

	err := s.handler.GetMatcherMetrics(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatcherMetricsResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.Contains(resp.Metrics.Operations, "match")
}

// Test ResetMatcher functionality
func (s *AdminHandlerSuite) TestResetMatcher() {
	s.matcher.Match(context.Background(), "starbucks", []models.Candidate{models.NewTextCandidate("starbucks")}, nil)

	c, rec := s.createContext("POST", "/api/v1/admin/matcher/reset", nil)

	err := s.handler.ResetMatcher(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	metrics := s.matcher.Metrics()
	s.Empty(metrics.Operations)
}

// Test ClearCache functionality
func (s *AdminHandlerSuite) TestClearCache() {
	c, rec := s.createContext("POST", "/api/v1/admin/matcher/cache/clear", nil)

	err := s.handler.ClearCache(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

// Test Seed functionality
func (s *AdminHandlerSuite) TestSeed() {
	body, _ := json.Marshal(dto.SeedRequest{Merchants: 5, Patterns: 13, Expenses: 10})
	c, rec := s.createContext("POST", "/api/v1/admin/dev/seed", body)

	err := s.handler.Seed(c)
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.SeedResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.Equal(5, resp.Merchants)
	s.Equal(10, resp.Expenses)
	s.Positive(resp.Patterns)

	// Categories get seeded alongside
	categories, err := repositories.NewCategoryRepository(s.db.DB).GetAll()
	s.NoError(err)
	s.NotEmpty(categories)
}
