package handlers

import (
	"bytes"
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

// MatchHandlerSuite defines the test suite for MatchHandler
type MatchHandlerSuite struct {
	suite.Suite
	db           *database.DB
	patternRepo  repositories.PatternRepositoryInterface
	merchantRepo repositories.MerchantRepositoryInterface
	categoryRepo repositories.CategoryRepositoryInterface
	handler      *MatchHandler
	echo         *echo.Echo
}

// SetupTest runs before each test in the suite
func (s *MatchHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.patternRepo = repositories.NewPatternRepository(s.db.DB)
	s.merchantRepo = repositories.NewMerchantRepository(s.db.DB)
	s.categoryRepo = repositories.NewCategoryRepository(s.db.DB)

	options := services.DefaultMatcherOptions()
	options.Timeout = time.Second
	normalizer := services.NewDefaultTextNormalizer()
	matcher := services.NewFuzzyMatcher(
		options,
		normalizer,
		cache.NewMemoryStore(time.Minute, time.Minute),
		nil,
		nil,
	)

	s.handler = NewMatchHandler(matcher, s.patternRepo, s.merchantRepo, normalizer, 100)

	s.echo = echo.New()
	s.echo.Validator = &CustomValidator{validator: validator.New()}
}

// TearDownTest runs after each test in the suite
func (s *MatchHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestMatchHandlerSuite runs the test suite
func TestMatchHandlerSuite(t *testing.T) {
	suite.Run(t, new(MatchHandlerSuite))
}

// Helper to create a JSON request context
func (s *MatchHandlerSuite) createContext(method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	return c, rec
}

// Test Match functionality
func (s *MatchHandlerSuite) TestMatch() {
	reqBody := dto.MatchRequest{
		Text:       "starbucks",
		Candidates: []string{"starbucks", "walmart", "uber"},
	}

	c, rec := s.createContext("POST", "/api/v1/match", reqBody)

	err := s.handler.Match(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.True(resp.Result.Success)
	s.NotEmpty(resp.Result.Matches)
	s.Equal("starbucks", resp.Result.Matches[0].Text)
	s.InDelta(1.0, resp.Result.Matches[0].Score, 0.0001)
}

func (s *MatchHandlerSuite) TestMatch_ValidationError() {
	reqBody := dto.MatchRequest{
		Text:       "",
		Candidates: []string{"starbucks"},
	}

	c, rec := s.createContext("POST", "/api/v1/match", reqBody)

	err := s.handler.Match(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.Equal("VALIDATION_001", string(resp.Error.Code))
}

func (s *MatchHandlerSuite) TestMatch_UnknownAlgorithmRejected() {
	reqBody := map[string]interface{}{
		"text":       "starbucks",
		"candidates": []string{"starbucks"},
		"algorithms": []string{"metaphone"},
	}

	c, rec := s.createContext("POST", "/api/v1/match", reqBody)

	err := s.handler.Match(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *MatchHandlerSuite) TestMatch_MinConfidenceOverride() {
	minConfidence := 0.99
	reqBody := dto.MatchRequest{
		Text:          "starbucks",
		Candidates:    []string{"completely different text"},
		MinConfidence: &minConfidence,
	}

	c, rec := s.createContext("POST", "/api/v1/match", reqBody)

	err := s.handler.Match(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.False(resp.Result.Success)
	s.Empty(resp.Result.Matches)
}

// Test MatchPatterns functionality
func (s *MatchHandlerSuite) TestMatchPatterns() {
	category := database.CreateTestCategory(s.T(), s.db, models.CategoryDining)
	err := s.patternRepo.Create(&models.CategoryPattern{
		Value:            "starbucks",
		PatternType:      models.PatternTypeMerchant,
		CategoryID:       category.ID,
		ConfidenceWeight: 0.9,
		Active:           true,
	})
	s.NoError(err)

	reqBody := dto.PatternMatchRequest{Text: "STARBUCKS #1234"}

	c, rec := s.createContext("POST", "/api/v1/match/patterns", reqBody)

	err = s.handler.MatchPatterns(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.True(resp.Result.Success)
	s.NotEmpty(resp.Result.Matches)

	// Pattern weight is applied on top of the fused score
	s.NotNil(resp.Result.Matches[0].AdjustedScore)
}

func (s *MatchHandlerSuite) TestMatchPatterns_NoPatterns() {
	reqBody := dto.PatternMatchRequest{Text: "starbucks"}

	c, rec := s.createContext("POST", "/api/v1/match/patterns", reqBody)

	err := s.handler.MatchPatterns(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.False(resp.Result.Success)
}

// Test MatchMerchants functionality
func (s *MatchHandlerSuite) TestMatchMerchants() {
	err := s.merchantRepo.Create(&models.CanonicalMerchant{Name: "starbucks", UsageCount: 100})
	s.NoError(err)
	err = s.merchantRepo.Create(&models.CanonicalMerchant{Name: "walmart", UsageCount: 100})
	s.NoError(err)

	reqBody := dto.MerchantMatchRequest{Name: "STARBUCKS STORE #998"}

	c, rec := s.createContext("POST", "/api/v1/match/merchants", reqBody)

	err = s.handler.MatchMerchants(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.True(resp.Result.Success)
	s.Equal("starbucks", resp.Result.Matches[0].Text)
}

func (s *MatchHandlerSuite) TestMatchMerchants_AliasShortCircuit() {
	merchant := &models.CanonicalMerchant{Name: "starbucks"}
	err := s.merchantRepo.Create(merchant)
	s.NoError(err)

	normalizer := services.NewDefaultTextNormalizer()
	err = s.merchantRepo.CreateAlias(&models.MerchantAlias{
		MerchantID:     merchant.ID,
		RawName:        "SQ *STARBUCKS #1234",
		NormalizedName: normalizer.NormalizeMerchant("SQ *STARBUCKS #1234"),
	})
	s.NoError(err)

	reqBody := dto.MerchantMatchRequest{Name: "SQ *STARBUCKS #1234"}

	c, rec := s.createContext("POST", "/api/v1/match/merchants", reqBody)

	err = s.handler.MatchMerchants(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.True(resp.Result.Success)
	s.Equal([]string{"alias"}, resp.Result.Algorithms)
	s.Equal(merchant.ID.String(), resp.Result.Matches[0].ID)
	s.InDelta(1.0, resp.Result.Matches[0].Score, 0.0001)
}

// Test BatchMatch functionality
func (s *MatchHandlerSuite) TestBatchMatch() {
	reqBody := dto.BatchMatchRequest{
		Texts:      []string{"starbucks", "walmart"},
		Candidates: []string{"starbucks", "walmart", "uber"},
	}

	c, rec := s.createContext("POST", "/api/v1/match/batch", reqBody)

	err := s.handler.BatchMatch(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.BatchMatchResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.Equal(2, resp.Count)
	s.Equal("starbucks", resp.Results[0].Matches[0].Text)
	s.Equal("walmart", resp.Results[1].Matches[0].Text)
}

func (s *MatchHandlerSuite) TestBatchMatch_TooLarge() {
	texts := make([]string, 101)
	for i := range texts {
		texts[i] = "text"
	}
	reqBody := dto.BatchMatchRequest{
		Texts:      texts,
		Candidates: []string{"candidate"},
	}

	c, rec := s.createContext("POST", "/api/v1/match/batch", reqBody)

	err := s.handler.BatchMatch(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.Equal("MATCH_005", string(resp.Error.Code))
}

// Test Similarity functionality
func (s *MatchHandlerSuite) TestSimilarity() {
	reqBody := dto.SimilarityRequest{
		Text1:     "Starbucks",
		Text2:     "starbucks",
		Algorithm: "jaro_winkler",
	}

	c, rec := s.createContext("POST", "/api/v1/similarity", reqBody)

	err := s.handler.Similarity(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.SimilarityResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)

	// Normalization lowercases both sides before scoring
	s.InDelta(1.0, resp.Score, 0.0001)
}

func (s *MatchHandlerSuite) TestSimilarity_Raw() {
	reqBody := dto.SimilarityRequest{
		Text1:     "starbucks",
		Text2:     "starbucks",
		Algorithm: "levenshtein",
		Raw:       true,
	}

	c, rec := s.createContext("POST", "/api/v1/similarity", reqBody)

	err := s.handler.Similarity(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.SimilarityResponse
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	s.NoError(err)
	s.InDelta(1.0, resp.Score, 0.0001)
}

func (s *MatchHandlerSuite) TestSimilarity_UnknownAlgorithm() {
	reqBody := map[string]string{
		"text1":     "a",
		"text2":     "b",
		"algorithm": "soundex2",
	}

	c, rec := s.createContext("POST", "/api/v1/similarity", reqBody)

	err := s.handler.Similarity(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}
