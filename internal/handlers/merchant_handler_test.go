package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expense-match/internal/database"
	"expense-match/internal/dto"
	"expense-match/internal/errors"
	"expense-match/internal/models"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// MerchantHandlerSuite defines the test suite for MerchantHandler
type MerchantHandlerSuite struct {
	suite.Suite
	db           *database.DB
	merchantRepo repositories.MerchantRepositoryInterface
	handler      *MerchantHandler
	echo         *echo.Echo
}

// SetupTest runs before each test in the suite
func (s *MerchantHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.merchantRepo = repositories.NewMerchantRepository(s.db.DB)
	s.handler = NewMerchantHandler(s.merchantRepo, services.NewDefaultTextNormalizer())
	s.echo = echo.New()
	s.echo.Validator = NewValidator()
}

// TearDownTest runs after each test in the suite
func (s *MerchantHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestMerchantHandlerSuite runs the test suite
func TestMerchantHandlerSuite(t *testing.T) {
	suite.Run(t, new(MerchantHandlerSuite))
}

func (s *MerchantHandlerSuite) createContext(method, path string, body []byte) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

// Test CreateMerchant functionality
func (s *MerchantHandlerSuite) TestCreateMerchant() {
	body, _ := json.Marshal(dto.CreateMerchantRequest{Name: "STARBUCKS #1234"})
	c, rec := s.createContext("POST", "/admin/merchants", body)

	err := s.handler.CreateMerchant(c)
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.MerchantResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("starbucks", resp.Name)
	s.Equal("STARBUCKS #1234", resp.DisplayName)
}

func (s *MerchantHandlerSuite) TestCreateMerchant_Duplicate() {
	body, _ := json.Marshal(dto.CreateMerchantRequest{Name: "starbucks"})
	c, _ := s.createContext("POST", "/admin/merchants", body)
	s.NoError(s.handler.CreateMerchant(c))

	c, rec := s.createContext("POST", "/admin/merchants", body)
	err := s.handler.CreateMerchant(c)
	s.NoError(err)
	s.Equal(http.StatusConflict, rec.Code)

	var resp errors.ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("MERCHANT_002", resp.Error.Code)
}

// Test ListMerchants functionality
func (s *MerchantHandlerSuite) TestListMerchants() {
	database.CreateTestMerchant(s.T(), s.db, "starbucks", 10)
	database.CreateTestMerchant(s.T(), s.db, "walmart", 25)

	c, rec := s.createContext("GET", "/admin/merchants", nil)

	err := s.handler.ListMerchants(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.MerchantListResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(2, resp.Count)
	// Most used first
	s.Equal("walmart", resp.Merchants[0].Name)
}

// Test GetMerchant functionality
func (s *MerchantHandlerSuite) TestGetMerchant_InvalidID() {
	c, rec := s.createContext("GET", "/admin/merchants/not-a-uuid", nil)
	c.SetParamNames("merchantId")
	c.SetParamValues("not-a-uuid")

	err := s.handler.GetMerchant(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp errors.ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("MERCHANT_003", resp.Error.Code)
}

// Test CreateAlias functionality
func (s *MerchantHandlerSuite) TestCreateAlias() {
	merchant := database.CreateTestMerchant(s.T(), s.db, "starbucks", 5)

	body, _ := json.Marshal(dto.CreateAliasRequest{RawName: "SQ *STARBUCKS STORE #90210"})
	c, rec := s.createContext("POST", "/admin/merchants/"+merchant.ID.String()+"/aliases", body)
	c.SetParamNames("merchantId")
	c.SetParamValues(merchant.ID.String())

	err := s.handler.CreateAlias(c)
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)

	alias, repoErr := s.merchantRepo.GetAliasByNormalizedName("starbucks store")
	s.NoError(repoErr)
	s.Equal(merchant.ID, alias.MerchantID)
	s.Equal("SQ *STARBUCKS STORE #90210", alias.RawName)

	// Alias registration counts as a confirmed match
	updated, repoErr := s.merchantRepo.GetByID(merchant.ID)
	s.NoError(repoErr)
	s.Equal(int64(6), updated.UsageCount)
}

// Test DeleteMerchant functionality
func (s *MerchantHandlerSuite) TestDeleteMerchant_CascadesAliases() {
	merchant := database.CreateTestMerchant(s.T(), s.db, "starbucks", 5)
	s.Require().NoError(s.merchantRepo.CreateAlias(&models.MerchantAlias{
		MerchantID:     merchant.ID,
		RawName:        "STARBUCKS #1234",
		NormalizedName: "starbucks",
	}))

	c, rec := s.createContext("DELETE", "/admin/merchants/"+merchant.ID.String(), nil)
	c.SetParamNames("merchantId")
	c.SetParamValues(merchant.ID.String())

	err := s.handler.DeleteMerchant(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	_, repoErr := s.merchantRepo.GetByID(merchant.ID)
	s.ErrorIs(repoErr, repositories.ErrMerchantNotFound)

	aliases, repoErr := s.merchantRepo.GetAliasesByMerchantID(merchant.ID)
	s.NoError(repoErr)
	s.Empty(aliases)
}
