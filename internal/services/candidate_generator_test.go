package services

import (
	"strings"
	"testing"

	"expense-match/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CandidateGeneratorTestSuite struct {
	suite.Suite
	generator  *candidateGenerator
	categoryID uuid.UUID
}

func TestCandidateGeneratorSuite(t *testing.T) {
	suite.Run(t, new(CandidateGeneratorTestSuite))
}

func (s *CandidateGeneratorTestSuite) SetupTest() {
	s.generator = NewCandidateGenerator().(*candidateGenerator)
	s.categoryID = uuid.New()
}

func (s *CandidateGeneratorTestSuite) TestMerchantPool_ContainsVariety() {
	categories := make(map[string]bool)
	for _, seed := range s.generator.merchantPool {
		s.NotEmpty(seed.name)
		s.NotEmpty(seed.category)
		categories[seed.category] = true
	}

	s.GreaterOrEqual(len(categories), 5, "Merchant pool should span multiple categories")
}

func (s *CandidateGeneratorTestSuite) TestGenerateMerchants_ReturnsRequestedCount() {
	merchants := s.generator.GenerateMerchants(40)

	s.Len(merchants, 40)
	for _, merchant := range merchants {
		s.NotEqual(uuid.Nil, merchant.ID)
		s.NotEmpty(merchant.Name)
		s.Equal(strings.ToLower(merchant.Name), merchant.Name, "Canonical name should be lowercased")
		s.NotEmpty(merchant.DisplayName)
		s.GreaterOrEqual(merchant.UsageCount, int64(0))
	}
}

func (s *CandidateGeneratorTestSuite) TestGeneratePatterns_UsesValidTypesAndWeights() {
	patterns := s.generator.GeneratePatterns(s.categoryID, 30)

	validTypes := map[string]bool{
		models.PatternTypeMerchant:    true,
		models.PatternTypeKeyword:     true,
		models.PatternTypeDescription: true,
	}

	s.Len(patterns, 30)
	for _, pattern := range patterns {
		s.Equal(s.categoryID, pattern.CategoryID)
		s.True(validTypes[pattern.PatternType], "Unexpected pattern type: %s", pattern.PatternType)
		s.GreaterOrEqual(pattern.ConfidenceWeight, 0.5)
		s.LessOrEqual(pattern.ConfidenceWeight, 1.0)
		s.GreaterOrEqual(pattern.UsageCount, int64(0))
		s.Less(pattern.UsageCount, int64(1000))
		s.GreaterOrEqual(pattern.SuccessCount, int64(0))
		s.Less(pattern.SuccessCount, int64(500))
		s.True(pattern.Active)
	}
}

func (s *CandidateGeneratorTestSuite) TestGenerateExpenses_ProducesValidAmounts() {
	expenses := s.generator.GenerateExpenses(25)

	s.Len(expenses, 25)
	for _, expense := range expenses {
		s.NotEmpty(expense.MerchantName)
		s.NotEmpty(expense.NormalizedMerchant)
		s.True(expense.Amount.IsPositive(), "Amount should be positive: %s", expense.Amount)
		s.LessOrEqual(expense.Amount.Exponent(), int32(0))
		s.GreaterOrEqual(expense.Amount.Exponent(), int32(-2), "Amount should have at most two decimal places")
		s.NotEmpty(expense.Category)
		s.False(expense.OccurredAt.IsZero())
	}
}

func (s *CandidateGeneratorTestSuite) TestGenerateRawMerchantText_SurvivesNormalization() {
	normalizer := NewDefaultTextNormalizer()
	merchant := &models.CanonicalMerchant{Name: "starbucks", DisplayName: "Starbucks"}

	for i := 0; i < 50; i++ {
		raw := s.generator.GenerateRawMerchantText(merchant)
		s.NotEmpty(raw)
		normalized := normalizer.NormalizeMerchant(raw)
		s.Contains(normalized, "starbucks", "Raw form %q should normalize back to the canonical name", raw)
	}
}
