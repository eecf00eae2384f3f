package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expense-match/internal/models"
)

type candidateGenerator struct {
	merchantPool []seedMerchant
	rng          *rand.Rand
}

type seedMerchant struct {
	name     string
	category string
}

// NewCandidateGenerator creates a generator seeded with a realistic merchant
// pool, for development seeding and load tests.
func NewCandidateGenerator() CandidateGeneratorInterface {
	source := rand.NewSource(time.Now().UnixNano())
	return &candidateGenerator{
		merchantPool: initializeSeedMerchants(),
		rng:          rand.New(source),
	}
}

func initializeSeedMerchants() []seedMerchant {
	return []seedMerchant{
		// Groceries
		{"Walmart Supercenter", models.CategoryGroceries},
		{"Kroger", models.CategoryGroceries},
		{"Whole Foods Market", models.CategoryGroceries},
		{"Trader Joe's", models.CategoryGroceries},
		{"Costco Wholesale", models.CategoryGroceries},
		{"Aldi", models.CategoryGroceries},

		// Dining
		{"Starbucks", models.CategoryDining},
		{"McDonald's", models.CategoryDining},
		{"Chipotle Mexican Grill", models.CategoryDining},
		{"Panera Bread", models.CategoryDining},
		{"Taco Bell", models.CategoryDining},
		{"La Taquería", models.CategoryDining},

		// Transportation
		{"Uber", models.CategoryTransportation},
		{"Lyft", models.CategoryTransportation},
		{"Shell", models.CategoryTransportation},
		{"Chevron", models.CategoryTransportation},

		// Shopping
		{"Amazon.com", models.CategoryShopping},
		{"Best Buy", models.CategoryShopping},
		{"Home Depot", models.CategoryShopping},
		{"Target", models.CategoryShopping},

		// Subscriptions & utilities
		{"Netflix", models.CategoryEntertainment},
		{"Spotify", models.CategoryEntertainment},
		{"Comcast Xfinity", models.CategoryBillsUtilities},
		{"Verizon Wireless", models.CategoryBillsUtilities},
	}
}

func (g *candidateGenerator) GenerateMerchants(count int) []*models.CanonicalMerchant {
	merchants := make([]*models.CanonicalMerchant, 0, count)
	for i := 0; i < count; i++ {
		seed := g.merchantPool[i%len(g.merchantPool)]
		name := seed.name
		if i >= len(g.merchantPool) {
			name = gofakeit.Company()
		}

		merchants = append(merchants, &models.CanonicalMerchant{
			ID:          uuid.New(),
			Name:        strings.ToLower(name),
			DisplayName: name,
			UsageCount:  int64(g.rng.Intn(5000)),
		})
	}
	return merchants
}

func (g *candidateGenerator) GeneratePatterns(categoryID uuid.UUID, count int) []*models.CategoryPattern {
	patternTypes := []string{
		models.PatternTypeMerchant,
		models.PatternTypeKeyword,
		models.PatternTypeDescription,
	}

	patterns := make([]*models.CategoryPattern, 0, count)
	for i := 0; i < count; i++ {
		seed := g.merchantPool[g.rng.Intn(len(g.merchantPool))]
		patterns = append(patterns, &models.CategoryPattern{
			ID:               uuid.New(),
			Value:            strings.ToLower(seed.name),
			PatternType:      patternTypes[i%len(patternTypes)],
			CategoryID:       categoryID,
			ConfidenceWeight: 0.5 + g.rng.Float64()*0.5,
			UsageCount:       int64(g.rng.Intn(1000)),
			SuccessCount:     int64(g.rng.Intn(500)),
			Active:           true,
		})
	}
	return patterns
}

func (g *candidateGenerator) GenerateExpenses(count int) []*models.Expense {
	expenses := make([]*models.Expense, 0, count)
	for i := 0; i < count; i++ {
		seed := g.merchantPool[g.rng.Intn(len(g.merchantPool))]
		merchant := &models.CanonicalMerchant{Name: strings.ToLower(seed.name), DisplayName: seed.name}

		amount := decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2)
		expenses = append(expenses, &models.Expense{
			ID:                 uuid.New(),
			MerchantName:       g.GenerateRawMerchantText(merchant),
			NormalizedMerchant: merchant.Name,
			Description:        gofakeit.Sentence(6),
			Amount:             amount,
			Category:           seed.category,
			OccurredAt:         gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
		})
	}
	return expenses
}

// GenerateRawMerchantText renders a merchant name the way it shows up on a
// card feed: processor prefixes, truncation, store numbers, random casing.
func (g *candidateGenerator) GenerateRawMerchantText(merchant *models.CanonicalMerchant) string {
	name := merchant.Label()

	switch g.rng.Intn(5) {
	case 0:
		name = "SQ *" + strings.ToUpper(name)
	case 1:
		name = "PAYPAL *" + strings.ToUpper(name)
	case 2:
		name = fmt.Sprintf("%s #%04d", strings.ToUpper(name), g.rng.Intn(10000))
	case 3:
		upper := strings.ToUpper(name)
		if len(upper) > 12 {
			upper = upper[:12]
		}
		name = fmt.Sprintf("%s %d", upper, 1000+g.rng.Intn(9000))
	default:
		name = strings.ToUpper(name)
	}
	return name
}
