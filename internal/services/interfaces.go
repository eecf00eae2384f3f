package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"expense-match/internal/models"
)

// FuzzyMatcherInterface is the matching engine contract. Match operations
// never return an error: failures are encoded in the result (timeout or
// error metadata) so callers always get a well-formed MatchResult.
type FuzzyMatcherInterface interface {
	// Match scores text against arbitrary candidates and returns the
	// matches above the confidence threshold, best first.
	Match(ctx context.Context, text string, candidates []models.Candidate, overrides *MatchOverrides) *models.MatchResult

	// MatchPattern matches against category patterns, applying word-level
	// fallback and per-pattern confidence weights.
	MatchPattern(ctx context.Context, text string, patterns []*models.CategoryPattern, overrides *MatchOverrides) *models.MatchResult

	// MatchMerchant matches a raw merchant name against canonical
	// merchants, boosting popular ones.
	MatchMerchant(ctx context.Context, name string, merchants []*models.CanonicalMerchant, overrides *MatchOverrides) *models.MatchResult

	// BatchMatch runs Match for each text, preserving input order.
	BatchMatch(ctx context.Context, texts []string, candidates []models.Candidate, overrides *MatchOverrides) []*models.MatchResult

	// CalculateSimilarity normalizes both inputs and scores them with one
	// algorithm; CalculateSimilarityRaw skips normalization.
	CalculateSimilarity(text1, text2, algorithm string) (float64, error)
	CalculateSimilarityRaw(text1, text2, algorithm string) (float64, error)

	Metrics() MetricsSummary
	Healthy(ctx context.Context) bool
	ClearCache()
	Reset()
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type MatchLoggerInterface interface {
	LogMatchCompleted(ctx context.Context, operation, query string, matchCount int, duration time.Duration)
	LogSlowMatch(ctx context.Context, operation string, duration time.Duration, candidateCount int)
	LogMatchTimeout(ctx context.Context, operation, query string, timeout time.Duration)
	LogMatchFailed(ctx context.Context, operation, query, errorMsg string)
	LogCacheFailure(ctx context.Context, operation string, err error)
	LogHealthCheckFailed(ctx context.Context, reason string)
	LogMatcherReset(ctx context.Context)
}

// TokenServiceInterface issues and validates admin API tokens
type TokenServiceInterface interface {
	GenerateToken(clientID, role string) (string, time.Time, error)
	ValidateToken(tokenString string) (*models.APIClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
}

// CandidateGeneratorInterface produces realistic fake domain data for
// development seeding and load tests.
type CandidateGeneratorInterface interface {
	GenerateMerchants(count int) []*models.CanonicalMerchant
	GeneratePatterns(categoryID uuid.UUID, count int) []*models.CategoryPattern
	GenerateExpenses(count int) []*models.Expense
	GenerateRawMerchantText(merchant *models.CanonicalMerchant) string
}
