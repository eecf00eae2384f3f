package models

import (
	"sort"
)

// Similarity algorithm identifiers
const (
	AlgorithmJaroWinkler = "jaro_winkler"
	AlgorithmLevenshtein = "levenshtein"
	AlgorithmTrigram     = "trigram"
	AlgorithmPhonetic    = "phonetic"
)

// Confidence levels derived from the best match score
const (
	ConfidenceNone    = "none"
	ConfidenceVeryLow = "very_low"
	ConfidenceLow     = "low"
	ConfidenceMedium  = "medium"
	ConfidenceHigh    = "high"
	ConfidenceExact   = "exact"
)

// Failure classifications carried in MatchResult metadata
const (
	FailureKindTimeout = "timeout"
	FailureKindError   = "error"

	MetadataFailureKind  = "failure_kind"
	MetadataErrorMessage = "error_message"
)

// AllAlgorithms returns every supported algorithm identifier
func AllAlgorithms() []string {
	return []string{
		AlgorithmJaroWinkler,
		AlgorithmLevenshtein,
		AlgorithmTrigram,
		AlgorithmPhonetic,
	}
}

// IsValidAlgorithm checks whether an algorithm identifier is supported
func IsValidAlgorithm(algorithm string) bool {
	for _, a := range AllAlgorithms() {
		if a == algorithm {
			return true
		}
	}
	return false
}

// MatchItem is a single scored candidate within a MatchResult.
// Score is the fused similarity before any domain adjustment; AdjustedScore,
// when set, is the post-adjustment value (pattern confidence, popularity boost)
// and takes over as the ordering key.
type MatchItem struct {
	ID              string             `json:"id,omitempty"`
	Text            string             `json:"text"`
	Score           float64            `json:"score"`
	AlgorithmScores map[string]float64 `json:"algorithm_scores,omitempty"`
	AdjustedScore   *float64           `json:"adjusted_score,omitempty"`
	Candidate       *Candidate         `json:"-"`
}

// ActiveScore returns the adjusted score when present, otherwise the fused score
func (m MatchItem) ActiveScore() float64 {
	if m.AdjustedScore != nil {
		return *m.AdjustedScore
	}
	return m.Score
}

// WithAdjustedScore returns a copy of the item with the adjusted score set
func (m MatchItem) WithAdjustedScore(score float64) MatchItem {
	m.AdjustedScore = &score
	return m
}

// dedupeKey identifies an item for merge deduplication: ID when present,
// otherwise the candidate text.
func (m MatchItem) dedupeKey() string {
	if m.ID != "" {
		return "id:" + m.ID
	}
	return "text:" + m.Text
}

// MatchResult is the outcome of one matching operation. It is a value type:
// every derived operation returns a new instance and never mutates in place.
// Matches are always ordered descending by the currently active score.
type MatchResult struct {
	Success    bool              `json:"success"`
	Matches    []MatchItem       `json:"matches"`
	QueryText  string            `json:"query_text"`
	Algorithms []string          `json:"algorithms_used"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewMatchResult builds a successful result, sorting matches by active score
func NewMatchResult(queryText string, matches []MatchItem, algorithms []string) *MatchResult {
	sorted := make([]MatchItem, len(matches))
	copy(sorted, matches)
	sortMatches(sorted)

	return &MatchResult{
		Success:    true,
		Matches:    sorted,
		QueryText:  queryText,
		Algorithms: algorithms,
		Metadata:   map[string]string{},
	}
}

// EmptyMatchResult builds a clean no-match result (not an error)
func EmptyMatchResult(queryText string) *MatchResult {
	return &MatchResult{
		Success:    false,
		Matches:    []MatchItem{},
		QueryText:  queryText,
		Algorithms: []string{},
		Metadata:   map[string]string{},
	}
}

// TimeoutMatchResult builds a failure result tagged as a timeout
func TimeoutMatchResult(queryText string) *MatchResult {
	r := EmptyMatchResult(queryText)
	r.Metadata[MetadataFailureKind] = FailureKindTimeout
	return r
}

// ErrorMatchResult builds a failure result preserving the internal error message
func ErrorMatchResult(queryText, message string) *MatchResult {
	r := EmptyMatchResult(queryText)
	r.Metadata[MetadataFailureKind] = FailureKindError
	r.Metadata[MetadataErrorMessage] = message
	return r
}

// Best returns the top-ranked match, or nil when there are none
func (r *MatchResult) Best() *MatchItem {
	if len(r.Matches) == 0 {
		return nil
	}
	best := r.Matches[0]
	return &best
}

// BestScore returns the active score of the top match, 0 when empty
func (r *MatchResult) BestScore() float64 {
	if best := r.Best(); best != nil {
		return best.ActiveScore()
	}
	return 0
}

// IsTimeout reports whether the result is a timeout failure
func (r *MatchResult) IsTimeout() bool {
	return r.Metadata[MetadataFailureKind] == FailureKindTimeout
}

// IsError reports whether the result is an internal-error failure
func (r *MatchResult) IsError() bool {
	return r.Metadata[MetadataFailureKind] == FailureKindError
}

// AboveThreshold returns a new result keeping only matches with active
// score >= t
func (r *MatchResult) AboveThreshold(t float64) *MatchResult {
	return r.Select(func(m MatchItem) bool {
		return m.ActiveScore() >= t
	})
}

// Top returns a new result truncated to the first n matches
func (r *MatchResult) Top(n int) *MatchResult {
	if n < 0 {
		n = 0
	}
	if n > len(r.Matches) {
		n = len(r.Matches)
	}
	out := r.clone()
	out.Matches = append([]MatchItem{}, r.Matches[:n]...)
	return out
}

// Select returns a new result keeping matches for which pred is true
func (r *MatchResult) Select(pred func(MatchItem) bool) *MatchResult {
	out := r.clone()
	out.Matches = make([]MatchItem, 0, len(r.Matches))
	for _, m := range r.Matches {
		if pred(m) {
			out.Matches = append(out.Matches, m)
		}
	}
	return out
}

// Reject returns a new result dropping matches for which pred is true
func (r *MatchResult) Reject(pred func(MatchItem) bool) *MatchResult {
	return r.Select(func(m MatchItem) bool { return !pred(m) })
}

// Merge unions two results' matches, deduplicating by ID-or-text (the higher
// active score wins), re-sorting descending, unioning algorithm lists and
// merging metadata. The receiver's query text and metadata take precedence.
func (r *MatchResult) Merge(other *MatchResult) *MatchResult {
	if other == nil {
		return r.clone()
	}

	byKey := make(map[string]MatchItem, len(r.Matches)+len(other.Matches))
	order := make([]string, 0, len(r.Matches)+len(other.Matches))

	for _, m := range r.Matches {
		k := m.dedupeKey()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = m
	}
	for _, m := range other.Matches {
		k := m.dedupeKey()
		existing, seen := byKey[k]
		if !seen {
			order = append(order, k)
			byKey[k] = m
			continue
		}
		if m.ActiveScore() > existing.ActiveScore() {
			byKey[k] = m
		}
	}

	merged := make([]MatchItem, 0, len(order))
	for _, k := range order {
		merged = append(merged, byKey[k])
	}
	sortMatches(merged)

	algorithms := append([]string{}, r.Algorithms...)
	for _, a := range other.Algorithms {
		if !containsString(algorithms, a) {
			algorithms = append(algorithms, a)
		}
	}

	metadata := make(map[string]string, len(r.Metadata)+len(other.Metadata))
	for k, v := range other.Metadata {
		metadata[k] = v
	}
	for k, v := range r.Metadata {
		metadata[k] = v
	}

	return &MatchResult{
		Success:    r.Success || other.Success,
		Matches:    merged,
		QueryText:  r.QueryText,
		Algorithms: algorithms,
		Metadata:   metadata,
	}
}

// ConfidenceLevel buckets the best active score
func (r *MatchResult) ConfidenceLevel() string {
	if len(r.Matches) == 0 {
		return ConfidenceNone
	}

	score := r.BestScore()
	switch {
	case score >= 0.95:
		return ConfidenceExact
	case score >= 0.85:
		return ConfidenceHigh
	case score >= 0.70:
		return ConfidenceMedium
	case score >= 0.50:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// ToMap exports the result as a plain map for serialization boundaries
func (r *MatchResult) ToMap() map[string]interface{} {
	matches := make([]map[string]interface{}, 0, len(r.Matches))
	for _, m := range r.Matches {
		entry := map[string]interface{}{
			"text":  m.Text,
			"score": m.Score,
		}
		if m.ID != "" {
			entry["id"] = m.ID
		}
		if len(m.AlgorithmScores) > 0 {
			entry["algorithm_scores"] = m.AlgorithmScores
		}
		if m.AdjustedScore != nil {
			entry["adjusted_score"] = *m.AdjustedScore
		}
		matches = append(matches, entry)
	}

	return map[string]interface{}{
		"success":          r.Success,
		"matches":          matches,
		"query_text":       r.QueryText,
		"algorithms_used":  r.Algorithms,
		"metadata":         r.Metadata,
		"confidence_level": r.ConfidenceLevel(),
	}
}

func (r *MatchResult) clone() *MatchResult {
	metadata := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		metadata[k] = v
	}
	return &MatchResult{
		Success:    r.Success,
		Matches:    append([]MatchItem{}, r.Matches...),
		QueryText:  r.QueryText,
		Algorithms: append([]string{}, r.Algorithms...),
		Metadata:   metadata,
	}
}

// sortMatches orders items descending by active score; ties break on text for
// deterministic output.
func sortMatches(items []MatchItem) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].ActiveScore(), items[j].ActiveScore()
		if si != sj {
			return si > sj
		}
		return items[i].Text < items[j].Text
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
