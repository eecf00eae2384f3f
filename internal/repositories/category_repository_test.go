package repositories

import (
	"testing"

	"expense-match/internal/database"
	"expense-match/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// CategoryRepositorySuite defines the test suite for CategoryRepository
type CategoryRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo CategoryRepositoryInterface
}

// SetupTest runs before each test in the suite
func (s *CategoryRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewCategoryRepository(s.db.DB)
}

// TearDownTest runs after each test in the suite
func (s *CategoryRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestCategoryRepositorySuite runs the test suite
func TestCategoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(CategoryRepositorySuite))
}

// Test Create functionality
func (s *CategoryRepositorySuite) TestCreate() {
	category := &models.Category{Name: models.CategoryGroceries}

	err := s.repo.Create(category)
	s.NoError(err)
	s.NotEqual(uuid.Nil, category.ID)
}

func (s *CategoryRepositorySuite) TestCreate_InvalidName() {
	category := &models.Category{Name: "NOT_A_CATEGORY"}

	err := s.repo.Create(category)
	s.Error(err)
}

// Test GetByID and GetByName functionality
func (s *CategoryRepositorySuite) TestGet() {
	category := &models.Category{Name: models.CategoryDining}
	err := s.repo.Create(category)
	s.NoError(err)

	found, err := s.repo.GetByID(category.ID)
	s.NoError(err)
	s.Equal(models.CategoryDining, found.Name)

	found, err = s.repo.GetByName(models.CategoryDining)
	s.NoError(err)
	s.Equal(category.ID, found.ID)

	_, err = s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrCategoryNotFound)

	_, err = s.repo.GetByName(models.CategoryTravel)
	s.ErrorIs(err, ErrCategoryNotFound)
}

// Test EnsureDefaults functionality
func (s *CategoryRepositorySuite) TestEnsureDefaults() {
	err := s.repo.EnsureDefaults()
	s.NoError(err)

	categories, err := s.repo.GetAll()
	s.NoError(err)
	s.Len(categories, len(models.AllCategoryNames()))

	// Idempotent on repeat runs
	err = s.repo.EnsureDefaults()
	s.NoError(err)

	categories, err = s.repo.GetAll()
	s.NoError(err)
	s.Len(categories, len(models.AllCategoryNames()))
}
