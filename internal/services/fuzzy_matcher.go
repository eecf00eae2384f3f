package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"expense-match/internal/cache"
	"expense-match/internal/models"
)

// Matching thresholds and tuning constants. Short queries get a raised
// threshold because tiny strings produce spuriously high similarity; the
// early-exit factor prunes candidates one algorithm has already written off.
const (
	defaultMinConfidence = 0.6
	defaultMaxResults    = 5
	defaultTimeout       = 10 * time.Millisecond
	defaultMaxCandidates = 100
	defaultCacheTTL      = time.Hour
	defaultSlowThreshold = 100 * time.Millisecond

	shortQueryLength  = 5
	shortQueryFactor  = 1.2
	shortQueryCeiling = 0.9

	earlyExitFactor     = 0.7
	highConfidenceBound = 0.95
	lengthRatioFloor    = 0.3

	wordFallbackPatternLimit = 20
	wordFallbackDiscount     = 0.85
	wordExactScore           = 1.0
	wordSubstringScore       = 0.8
	minWordLength            = 3
	minSubstringWordLength   = 4

	popularityBoostFactor = 0.05
	popularityMinUsage    = 10
)

// MatcherOptions configures a FuzzyMatcher instance. Zero values for numeric
// and slice fields fall back to the defaults; the boolean fields are taken as
// given, so start from DefaultMatcherOptions when only overriding a few.
type MatcherOptions struct {
	Algorithms         []string
	MinConfidence      float64
	MaxResults         int
	Timeout            time.Duration
	EnableCaching      bool
	NormalizeText      bool
	HandleSpanish      bool
	MaxCandidates      int
	CacheTTL           time.Duration
	SlowMatchThreshold time.Duration
}

func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{
		Algorithms:         DefaultAlgorithms(),
		MinConfidence:      defaultMinConfidence,
		MaxResults:         defaultMaxResults,
		Timeout:            defaultTimeout,
		EnableCaching:      true,
		NormalizeText:      true,
		HandleSpanish:      true,
		MaxCandidates:      defaultMaxCandidates,
		CacheTTL:           defaultCacheTTL,
		SlowMatchThreshold: defaultSlowThreshold,
	}
}

// MatchOverrides carries per-call option overrides; nil pointer fields keep
// the instance defaults. UseWordMatching forces the word-level fallback in
// MatchPattern even when the fuzzy pass found enough matches.
type MatchOverrides struct {
	Algorithms      []string
	MinConfidence   *float64
	MaxResults      *int
	Timeout         *time.Duration
	EnableCaching   *bool
	NormalizeText   *bool
	UseWordMatching *bool
}

// FuzzyMatcher implements FuzzyMatcherInterface. It is safe for concurrent
// use; all mutable state lives in the normalizer cache, the metrics
// collector, and the external cache store, each synchronized on its own.
type FuzzyMatcher struct {
	options    MatcherOptions
	normalizer *TextNormalizer
	extractor  *TextExtractor
	collector  *MetricsCollector
	store      cache.Store
	recorder   MetricsRecorderInterface
	logger     MatchLoggerInterface
}

func NewFuzzyMatcher(
	options MatcherOptions,
	normalizer *TextNormalizer,
	store cache.Store,
	recorder MetricsRecorderInterface,
	logger MatchLoggerInterface,
) FuzzyMatcherInterface {
	if len(options.Algorithms) == 0 {
		options.Algorithms = DefaultAlgorithms()
	}
	if options.MinConfidence <= 0 {
		options.MinConfidence = defaultMinConfidence
	}
	if options.MaxResults <= 0 {
		options.MaxResults = defaultMaxResults
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}
	if options.MaxCandidates <= 0 {
		options.MaxCandidates = defaultMaxCandidates
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = defaultCacheTTL
	}
	if options.SlowMatchThreshold <= 0 {
		options.SlowMatchThreshold = defaultSlowThreshold
	}

	if normalizer == nil {
		normalizerOptions := DefaultNormalizerOptions()
		normalizerOptions.FoldDiacritics = options.HandleSpanish
		normalizer = NewTextNormalizer(normalizerOptions)
	}
	if logger == nil {
		logger = NewMatchLogger(slog.Default())
	}

	return &FuzzyMatcher{
		options:    options,
		normalizer: normalizer,
		extractor:  NewTextExtractor(),
		collector:  NewMetricsCollector(),
		store:      store,
		recorder:   recorder,
		logger:     logger,
	}
}

// NewDefaultFuzzyMatcher builds a matcher with default options and an
// in-memory cache, for callers that do not wire their own collaborators.
func NewDefaultFuzzyMatcher() FuzzyMatcherInterface {
	return NewFuzzyMatcher(
		DefaultMatcherOptions(),
		nil,
		cache.NewMemoryStore(defaultCacheTTL, 10*time.Minute),
		nil,
		nil,
	)
}

func (m *FuzzyMatcher) Match(ctx context.Context, text string, candidates []models.Candidate, overrides *MatchOverrides) *models.MatchResult {
	options, _ := m.resolve(overrides)
	return m.match(ctx, "match", text, "", candidates, options)
}

func (m *FuzzyMatcher) MatchPattern(ctx context.Context, text string, patterns []*models.CategoryPattern, overrides *MatchOverrides) *models.MatchResult {
	options, useWordMatching := m.resolve(overrides)

	candidates := make([]models.Candidate, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern == nil || !pattern.Active {
			continue
		}
		candidates = append(candidates, models.NewPatternCandidate(pattern))
	}

	result := m.match(ctx, "match_pattern", text, "", candidates, options)
	if result.IsTimeout() || result.IsError() {
		return result
	}

	if len(result.Matches) < 2 || useWordMatching {
		wordResult := m.wordFallback(text, patterns, options)
		result = result.Merge(wordResult)
	}

	result = m.applyPatternConfidence(result, patterns)
	return result.Top(options.MaxResults)
}

func (m *FuzzyMatcher) MatchMerchant(ctx context.Context, name string, merchants []*models.CanonicalMerchant, overrides *MatchOverrides) *models.MatchResult {
	options, _ := m.resolve(overrides)

	candidates := make([]models.Candidate, 0, len(merchants))
	for _, merchant := range merchants {
		if merchant == nil {
			continue
		}
		candidates = append(candidates, models.NewMerchantCandidate(merchant))
	}

	normalized := m.normalizer.NormalizeMerchant(name)
	result := m.match(ctx, "match_merchant", name, normalized, candidates, options)
	if result.IsTimeout() || result.IsError() {
		return result
	}

	result = m.applyPopularityBoost(result, merchants)
	return result.Top(options.MaxResults)
}

func (m *FuzzyMatcher) BatchMatch(ctx context.Context, texts []string, candidates []models.Candidate, overrides *MatchOverrides) []*models.MatchResult {
	if m.recorder != nil {
		m.recorder.RecordGauge("match.batch_size", float64(len(texts)), nil)
	}

	started := time.Now()
	results := make([]*models.MatchResult, 0, len(texts))
	for _, text := range texts {
		results = append(results, m.Match(ctx, text, candidates, overrides))
	}

	m.collector.RecordDuration("batch_match", time.Since(started))
	if m.recorder != nil {
		m.recorder.RecordProcessingTime("batch_match", time.Since(started))
	}
	return results
}

// CalculateSimilarity normalizes both inputs before scoring.
func (m *FuzzyMatcher) CalculateSimilarity(text1, text2, algorithm string) (float64, error) {
	return m.CalculateSimilarityRaw(m.normalizer.Normalize(text1), m.normalizer.Normalize(text2), algorithm)
}

func (m *FuzzyMatcher) CalculateSimilarityRaw(text1, text2, algorithm string) (float64, error) {
	started := time.Now()
	score, err := similarityScore(algorithm, text1, text2)
	if err != nil {
		return 0, err
	}

	m.collector.RecordDuration("similarity", time.Since(started))
	if m.recorder != nil {
		m.recorder.RecordProcessingTime("similarity", time.Since(started))
	}
	return score, nil
}

func (m *FuzzyMatcher) Metrics() MetricsSummary {
	if m.recorder != nil {
		m.recorder.RecordGauge("normalizer.cache_entries", float64(m.normalizer.CacheSize()), nil)
	}
	return m.collector.Summary()
}

// Healthy probes the matcher end to end: a string matched against itself must
// come back as a near-exact hit. Caching is bypassed so the probe exercises
// the scan path.
func (m *FuzzyMatcher) Healthy(ctx context.Context) bool {
	noCache := false
	result := m.Match(ctx, "health check probe", []models.Candidate{
		models.NewTextCandidate("health check probe"),
	}, &MatchOverrides{EnableCaching: &noCache})

	if !result.Success || len(result.Matches) == 0 {
		m.logger.LogHealthCheckFailed(ctx, "self-match returned no matches")
		return false
	}
	if result.BestScore() < highConfidenceBound {
		m.logger.LogHealthCheckFailed(ctx, fmt.Sprintf("self-match score %.3f below %.2f", result.BestScore(), highConfidenceBound))
		return false
	}
	return true
}

// ClearCache drops both the external result cache and the normalization cache.
func (m *FuzzyMatcher) ClearCache() {
	m.normalizer.ClearCache()
	if m.store == nil {
		return
	}
	if err := m.store.Clear(); err != nil {
		m.logger.LogCacheFailure(context.Background(), "clear", err)
	}
}

// Reset clears caches and zeroes collected metrics.
func (m *FuzzyMatcher) Reset() {
	m.ClearCache()
	m.collector.Reset()
	m.logger.LogMatcherReset(context.Background())
}

func (m *FuzzyMatcher) resolve(overrides *MatchOverrides) (MatcherOptions, bool) {
	options := m.options
	useWordMatching := false
	if overrides == nil {
		return options, useWordMatching
	}

	if len(overrides.Algorithms) > 0 {
		options.Algorithms = overrides.Algorithms
	}
	if overrides.MinConfidence != nil {
		options.MinConfidence = *overrides.MinConfidence
	}
	if overrides.MaxResults != nil && *overrides.MaxResults > 0 {
		options.MaxResults = *overrides.MaxResults
	}
	if overrides.Timeout != nil && *overrides.Timeout > 0 {
		options.Timeout = *overrides.Timeout
	}
	if overrides.EnableCaching != nil {
		options.EnableCaching = *overrides.EnableCaching
	}
	if overrides.NormalizeText != nil {
		options.NormalizeText = *overrides.NormalizeText
	}
	if overrides.UseWordMatching != nil {
		useWordMatching = *overrides.UseWordMatching
	}
	return options, useWordMatching
}

// match is the shared pipeline: validate, normalize, consult the cache, scan
// under the timeout, then record metrics and write back to the cache. The
// preNormalized argument lets merchant matching substitute its own
// normalization for the query while candidates still go through the default
// pipeline.
func (m *FuzzyMatcher) match(ctx context.Context, operation, text, preNormalized string, candidates []models.Candidate, options MatcherOptions) *models.MatchResult {
	started := time.Now()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(candidates) == 0 {
		m.recordOutcome(ctx, operation, models.EmptyMatchResult(text), started, 0, options)
		return models.EmptyMatchResult(text)
	}

	query := preNormalized
	if query == "" {
		if options.NormalizeText {
			query = m.normalizer.Normalize(trimmed)
		} else {
			query = trimmed
		}
	}
	if query == "" {
		m.recordOutcome(ctx, operation, models.EmptyMatchResult(text), started, 0, options)
		return models.EmptyMatchResult(text)
	}

	var cacheKey string
	if options.EnableCaching && m.store != nil {
		cacheKey = m.cacheKey(operation, query, candidates, options)
		if cached, ok := m.cachedResult(ctx, operation, cacheKey); ok {
			m.collector.RecordCacheHit()
			if m.recorder != nil {
				m.recorder.IncrementCounter("cache.hit", nil)
			}
			return cached
		}
		m.collector.RecordCacheMiss()
		if m.recorder != nil {
			m.recorder.IncrementCounter("cache.miss", nil)
		}
	}

	result := m.runScan(ctx, trimmed, query, candidates, options)
	m.recordOutcome(ctx, operation, result, started, len(candidates), options)

	if cacheKey != "" && !result.IsTimeout() && !result.IsError() {
		m.storeResult(ctx, operation, cacheKey, result, options.CacheTTL)
	}
	return result
}

// runScan executes the candidate scan on its own goroutine so the timeout and
// context cancellation can cut it off. Panics inside the scan become error
// results instead of crashing the caller.
func (m *FuzzyMatcher) runScan(ctx context.Context, raw, query string, candidates []models.Candidate, options MatcherOptions) *models.MatchResult {
	out := make(chan *models.MatchResult, 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				out <- models.ErrorMatchResult(raw, fmt.Sprintf("%v", recovered))
			}
		}()
		out <- m.scanCandidates(raw, query, candidates, options)
	}()

	select {
	case result := <-out:
		return result
	case <-ctx.Done():
		return models.TimeoutMatchResult(raw)
	case <-time.After(options.Timeout):
		return models.TimeoutMatchResult(raw)
	}
}

func (m *FuzzyMatcher) scanCandidates(raw, query string, candidates []models.Candidate, options MatcherOptions) *models.MatchResult {
	threshold := options.MinConfidence
	queryRunes := []rune(query)
	if len(queryRunes) < shortQueryLength {
		threshold = math.Min(threshold*shortQueryFactor, shortQueryCeiling)
	}
	queryLength := float64(len(queryRunes))

	limit := options.MaxCandidates
	if len(candidates) < limit {
		limit = len(candidates)
	}

	var matches []models.MatchItem
	highConfidence := 0

	for i := 0; i < limit; i++ {
		extracted := strings.TrimSpace(m.extractor.Extract(&candidates[i]))
		if extracted == "" {
			continue
		}

		candidateText := extracted
		if options.NormalizeText {
			candidateText = m.normalizer.Normalize(extracted)
			if candidateText == "" {
				continue
			}
		}

		candidateLength := float64(len([]rune(candidateText)))
		shorter, longer := queryLength, candidateLength
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if longer > 0 && shorter/longer < lengthRatioFloor {
			continue
		}

		scores := make(map[string]float64, len(options.Algorithms))
		for _, algorithm := range options.Algorithms {
			score, err := similarityScore(algorithm, query, candidateText)
			if err != nil {
				return models.ErrorMatchResult(raw, err.Error())
			}
			scores[algorithm] = score
			if score < threshold*earlyExitFactor {
				break
			}
		}

		fused := fuseScores(scores)
		if fused < threshold {
			continue
		}

		matches = append(matches, models.MatchItem{
			ID:              candidates[i].Identifier(),
			Text:            extracted,
			Score:           fused,
			AlgorithmScores: scores,
			Candidate:       &candidates[i],
		})

		if fused >= highConfidenceBound {
			highConfidence++
			if highConfidence >= options.MaxResults {
				break
			}
		}
	}

	result := models.NewMatchResult(raw, matches, options.Algorithms).Top(options.MaxResults)
	result.Success = len(matches) > 0
	return result
}

// wordFallback scores query words against the leading patterns directly:
// exact token equality, then substring containment for longer words, both
// discounted so fuzzy scores outrank them on ties.
func (m *FuzzyMatcher) wordFallback(text string, patterns []*models.CategoryPattern, options MatcherOptions) *models.MatchResult {
	query := text
	if options.NormalizeText {
		query = m.normalizer.Normalize(text)
	}

	var words []string
	for _, word := range strings.Fields(query) {
		if len([]rune(word)) >= minWordLength {
			words = append(words, word)
		}
	}
	if len(words) == 0 {
		return models.EmptyMatchResult(text)
	}

	limit := wordFallbackPatternLimit
	if len(patterns) < limit {
		limit = len(patterns)
	}

	var matches []models.MatchItem
	for i := 0; i < limit; i++ {
		pattern := patterns[i]
		if pattern == nil || !pattern.Active {
			continue
		}

		patternText := pattern.Value
		if options.NormalizeText {
			patternText = m.normalizer.Normalize(pattern.Value)
		}
		if patternText == "" {
			continue
		}

		best := 0.0
		for _, word := range words {
			switch {
			case word == patternText:
				best = math.Max(best, wordExactScore)
			case len([]rune(word)) >= minSubstringWordLength && strings.Contains(patternText, word):
				best = math.Max(best, wordSubstringScore)
			}
		}
		if best == 0 {
			continue
		}

		candidate := models.NewPatternCandidate(pattern)
		matches = append(matches, models.MatchItem{
			ID:        candidate.Identifier(),
			Text:      pattern.Value,
			Score:     best * wordFallbackDiscount,
			Candidate: &candidate,
		})
	}

	result := models.NewMatchResult(text, matches, []string{"word"})
	result.Success = len(matches) > 0
	return result
}

// applyPatternConfidence multiplies each score by the matched pattern's
// effective confidence weight and re-sorts on the adjusted value.
func (m *FuzzyMatcher) applyPatternConfidence(result *models.MatchResult, patterns []*models.CategoryPattern) *models.MatchResult {
	byID := make(map[string]*models.CategoryPattern, len(patterns))
	for _, pattern := range patterns {
		if pattern != nil {
			byID[pattern.ID.String()] = pattern
		}
	}

	adjusted := make([]models.MatchItem, 0, len(result.Matches))
	for _, item := range result.Matches {
		weight := 1.0
		if pattern, ok := byID[item.ID]; ok {
			weight = pattern.EffectiveConfidence()
		} else if item.Candidate != nil {
			weight = item.Candidate.ConfidenceWeight()
		}

		if weight != 1.0 && m.recorder != nil {
			m.recorder.IncrementCounter("pattern.confidence_adjusted", nil)
		}
		adjusted = append(adjusted, item.WithAdjustedScore(item.Score*weight))
	}

	sortAdjusted(adjusted)
	out := models.NewMatchResult(result.QueryText, adjusted, result.Algorithms)
	out.Success = result.Success
	for k, v := range result.Metadata {
		out.Metadata[k] = v
	}
	return out
}

// applyPopularityBoost lifts scores for heavily used merchants by
// log10(usage) * factor, capped at 1.
func (m *FuzzyMatcher) applyPopularityBoost(result *models.MatchResult, merchants []*models.CanonicalMerchant) *models.MatchResult {
	byID := make(map[string]*models.CanonicalMerchant, len(merchants))
	for _, merchant := range merchants {
		if merchant != nil {
			byID[merchant.ID.String()] = merchant
		}
	}

	adjusted := make([]models.MatchItem, 0, len(result.Matches))
	for _, item := range result.Matches {
		usage := int64(0)
		if merchant, ok := byID[item.ID]; ok {
			usage = merchant.UsageCount
		} else if item.Candidate != nil {
			usage = item.Candidate.MerchantUsageCount()
		}

		if usage <= popularityMinUsage {
			adjusted = append(adjusted, item)
			continue
		}

		boosted := math.Min(item.Score+math.Log10(float64(usage))*popularityBoostFactor, 1.0)
		if m.recorder != nil {
			m.recorder.IncrementCounter("merchant.popularity_boosted", nil)
		}
		adjusted = append(adjusted, item.WithAdjustedScore(boosted))
	}

	sortAdjusted(adjusted)
	out := models.NewMatchResult(result.QueryText, adjusted, result.Algorithms)
	out.Success = result.Success
	for k, v := range result.Metadata {
		out.Metadata[k] = v
	}
	return out
}

func (m *FuzzyMatcher) recordOutcome(ctx context.Context, operation string, result *models.MatchResult, started time.Time, candidateCount int, options MatcherOptions) {
	elapsed := time.Since(started)
	m.collector.RecordDuration(operation, elapsed)

	if m.recorder != nil {
		m.recorder.RecordProcessingTime(operation, elapsed)
		m.recorder.RecordGauge("match.candidates_scanned", float64(candidateCount), nil)
	}

	tags := map[string]string{"operation": operation}
	switch {
	case result.IsTimeout():
		if m.recorder != nil {
			m.recorder.IncrementCounter("match.timeout", tags)
		}
		m.logger.LogMatchTimeout(ctx, operation, result.QueryText, options.Timeout)
	case result.IsError():
		if m.recorder != nil {
			m.recorder.IncrementCounter("match.error", tags)
		}
		m.logger.LogMatchFailed(ctx, operation, result.QueryText, result.Metadata[models.MetadataErrorMessage])
	case len(result.Matches) == 0:
		if m.recorder != nil {
			m.recorder.IncrementCounter("match.empty", tags)
		}
	default:
		if m.recorder != nil {
			m.recorder.IncrementCounter("match.completed", tags)
			m.recorder.RecordGauge("match.top_confidence", result.BestScore(), nil)
		}
		m.logger.LogMatchCompleted(ctx, operation, result.QueryText, len(result.Matches), elapsed)
	}

	if elapsed > options.SlowMatchThreshold {
		m.logger.LogSlowMatch(ctx, operation, elapsed, candidateCount)
	}
}

// cacheKey hashes the normalized query together with the sorted candidate
// identities and the options that change the outcome, so the same query
// against a different candidate set or with different thresholds never
// collides.
func (m *FuzzyMatcher) cacheKey(operation, query string, candidates []models.Candidate, options MatcherOptions) string {
	identities := make([]string, 0, len(candidates))
	for i := range candidates {
		id := candidates[i].Identifier()
		if id == "" {
			id = m.extractor.Extract(&candidates[i])
		}
		identities = append(identities, id)
	}
	sort.Strings(identities)

	digest := sha256.New()
	digest.Write([]byte(operation))
	digest.Write([]byte{0})
	digest.Write([]byte(query))
	digest.Write([]byte{0})
	fmt.Fprintf(digest, "%v|%g|%d", options.Algorithms, options.MinConfidence, options.MaxResults)
	digest.Write([]byte{0})
	for _, id := range identities {
		digest.Write([]byte(id))
		digest.Write([]byte{0})
	}
	return "match:" + hex.EncodeToString(digest.Sum(nil))
}

func (m *FuzzyMatcher) cachedResult(ctx context.Context, operation, key string) (*models.MatchResult, bool) {
	payload, found, err := m.store.Get(key)
	if err != nil {
		m.logger.LogCacheFailure(ctx, operation, err)
		if m.recorder != nil {
			m.recorder.IncrementCounter("cache.failure", nil)
		}
		return nil, false
	}
	if !found {
		return nil, false
	}

	var result models.MatchResult
	if err := json.Unmarshal(payload, &result); err != nil {
		m.logger.LogCacheFailure(ctx, operation, err)
		return nil, false
	}

	// Candidate references are not serialized; rebuild them as plain text
	// candidates so downstream adjustments still have something to read.
	for i := range result.Matches {
		rebuilt := models.NewTextCandidate(result.Matches[i].Text)
		result.Matches[i].Candidate = &rebuilt
	}
	return &result, true
}

func (m *FuzzyMatcher) storeResult(ctx context.Context, operation, key string, result *models.MatchResult, ttl time.Duration) {
	payload, err := json.Marshal(result)
	if err != nil {
		m.logger.LogCacheFailure(ctx, operation, err)
		return
	}
	if err := m.store.Set(key, payload, ttl); err != nil {
		m.logger.LogCacheFailure(ctx, operation, err)
		if m.recorder != nil {
			m.recorder.IncrementCounter("cache.failure", nil)
		}
	}
}

// sortAdjusted mirrors the result ordering rule for locally built slices.
func sortAdjusted(items []models.MatchItem) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].ActiveScore(), items[j].ActiveScore()
		if si != sj {
			return si > sj
		}
		return items[i].Text < items[j].Text
	})
}
