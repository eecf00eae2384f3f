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
	"expense-match/internal/errors"
	"expense-match/internal/models"
	"expense-match/internal/repositories"
	"expense-match/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ExpenseHandlerSuite defines the test suite for ExpenseHandler
type ExpenseHandlerSuite struct {
	suite.Suite
	db          *database.DB
	expenseRepo repositories.ExpenseRepositoryInterface
	patternRepo repositories.PatternRepositoryInterface
	handler     *ExpenseHandler
	echo        *echo.Echo
	category    *models.Category
}

// SetupTest runs before each test in the suite
func (s *ExpenseHandlerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.expenseRepo = repositories.NewExpenseRepository(s.db.DB)
	s.patternRepo = repositories.NewPatternRepository(s.db.DB)
	categoryRepo := repositories.NewCategoryRepository(s.db.DB)

	options := services.DefaultMatcherOptions()
	options.Timeout = time.Second
	matcher := services.NewFuzzyMatcher(
		options,
		nil,
		cache.NewMemoryStore(time.Minute, time.Minute),
		nil,
		nil,
	)

	s.handler = NewExpenseHandler(
		s.expenseRepo,
		categoryRepo,
		s.patternRepo,
		matcher,
		services.NewDefaultTextNormalizer(),
	)
	s.echo = echo.New()
	s.echo.Validator = NewValidator()
	s.category = database.CreateTestCategory(s.T(), s.db, models.CategoryDining)
}

// TearDownTest runs after each test in the suite
func (s *ExpenseHandlerSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestExpenseHandlerSuite runs the test suite
func TestExpenseHandlerSuite(t *testing.T) {
	suite.Run(t, new(ExpenseHandlerSuite))
}

func (s *ExpenseHandlerSuite) createContext(method, path string, body []byte) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

func (s *ExpenseHandlerSuite) seedExpense(merchantName string) *models.Expense {
	expense := &models.Expense{
		MerchantName:       merchantName,
		NormalizedMerchant: services.NewDefaultTextNormalizer().NormalizeMerchant(merchantName),
		Amount:             decimal.NewFromFloat(12.50),
		OccurredAt:         time.Now().UTC(),
	}
	s.Require().NoError(s.expenseRepo.Create(expense))
	return expense
}

// Test ImportExpenses functionality
func (s *ExpenseHandlerSuite) TestImportExpenses() {
	body, _ := json.Marshal(dto.ImportExpensesRequest{
		Expenses: []dto.CreateExpenseRequest{
			{MerchantName: "SQ *BLUE BOTTLE", Amount: "4.75"},
			{MerchantName: "STARBUCKS #1234", Amount: "6.20", OccurredAt: "2026-08-15T09:30:00Z"},
		},
	})
	c, rec := s.createContext("POST", "/expenses/import", body)

	err := s.handler.ImportExpenses(c)
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.ExpenseListResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(2, resp.Count)
	s.Equal("blue bottle", resp.Expenses[0].NormalizedMerchant)

	count, repoErr := s.expenseRepo.Count()
	s.NoError(repoErr)
	s.Equal(int64(2), count)
}

func (s *ExpenseHandlerSuite) TestImportExpenses_InvalidAmount() {
	body, _ := json.Marshal(dto.ImportExpensesRequest{
		Expenses: []dto.CreateExpenseRequest{
			{MerchantName: "STARBUCKS", Amount: "not-a-number"},
		},
	})
	c, rec := s.createContext("POST", "/expenses/import", body)

	err := s.handler.ImportExpenses(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp errors.ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("VALIDATION_001", resp.Error.Code)
}

// Test ListUncategorized functionality
func (s *ExpenseHandlerSuite) TestListUncategorized() {
	s.seedExpense("STARBUCKS #1234")
	categorized := s.seedExpense("WALMART")
	s.Require().NoError(s.expenseRepo.AssignCategory(categorized.ID, s.category.ID, s.category.Name))

	c, rec := s.createContext("GET", "/expenses/uncategorized", nil)

	err := s.handler.ListUncategorized(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.ExpenseListResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(1, resp.Count)
	s.Equal("STARBUCKS #1234", resp.Expenses[0].MerchantName)
}

// Test Categorize functionality
func (s *ExpenseHandlerSuite) TestCategorize() {
	expense := s.seedExpense("STARBUCKS #1234")

	body, _ := json.Marshal(dto.CategorizeExpenseRequest{CategoryName: models.CategoryDining})
	c, rec := s.createContext("POST", "/expenses/"+expense.ID.String()+"/categorize", body)
	c.SetParamNames("expenseId")
	c.SetParamValues(expense.ID.String())

	err := s.handler.Categorize(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.CategorizeResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.CategoryDining, resp.Expense.Category)
	s.NotNil(resp.Expense.CategoryID)
}

func (s *ExpenseHandlerSuite) TestCategorize_InvalidCategory() {
	expense := s.seedExpense("STARBUCKS #1234")

	body, _ := json.Marshal(dto.CategorizeExpenseRequest{CategoryName: "SNACKS"})
	c, rec := s.createContext("POST", "/expenses/"+expense.ID.String()+"/categorize", body)
	c.SetParamNames("expenseId")
	c.SetParamValues(expense.ID.String())

	err := s.handler.Categorize(c)
	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp errors.ErrorResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("CATEGORY_002", resp.Error.Code)
}

// Test AutoCategorize functionality
func (s *ExpenseHandlerSuite) TestAutoCategorize() {
	pattern := &models.CategoryPattern{
		Value:            "starbucks",
		PatternType:      models.PatternTypeMerchant,
		CategoryID:       s.category.ID,
		ConfidenceWeight: 0.95,
		Active:           true,
	}
	s.Require().NoError(s.patternRepo.Create(pattern))

	expense := s.seedExpense("STARBUCKS #1234")

	c, rec := s.createContext("POST", "/expenses/"+expense.ID.String()+"/auto-categorize", nil)
	c.SetParamNames("expenseId")
	c.SetParamValues(expense.ID.String())

	err := s.handler.AutoCategorize(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.CategorizeResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.CategoryDining, resp.Expense.Category)
	s.NotNil(resp.Result)
	s.True(resp.Result.Success)

	// The assignment counts as an unconfirmed pattern use
	updated, repoErr := s.patternRepo.GetByID(pattern.ID)
	s.NoError(repoErr)
	s.Equal(int64(1), updated.UsageCount)
	s.Equal(int64(0), updated.SuccessCount)
}

func (s *ExpenseHandlerSuite) TestAutoCategorize_NoConfidentMatch() {
	pattern := &models.CategoryPattern{
		Value:            "starbucks",
		PatternType:      models.PatternTypeMerchant,
		CategoryID:       s.category.ID,
		ConfidenceWeight: 0.95,
		Active:           true,
	}
	s.Require().NoError(s.patternRepo.Create(pattern))

	expense := s.seedExpense("ACE HARDWARE")

	c, rec := s.createContext("POST", "/expenses/"+expense.ID.String()+"/auto-categorize", nil)
	c.SetParamNames("expenseId")
	c.SetParamValues(expense.ID.String())

	err := s.handler.AutoCategorize(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.CategorizeResponse
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Empty(resp.Expense.Category)
	s.Nil(resp.Expense.CategoryID)
}
