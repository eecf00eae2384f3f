package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"

	"expense-match/internal/models"
)

var ErrUnknownAlgorithm = errors.New("unknown similarity algorithm")

// Fusion weights favor Jaro-Winkler (strong on merchant-style short strings)
// and discount phonetic equality, which is binary and noisy on its own.
var defaultAlgorithmWeights = map[string]float64{
	models.AlgorithmJaroWinkler: 1.2,
	models.AlgorithmLevenshtein: 0.8,
	models.AlgorithmTrigram:     1.0,
	models.AlgorithmPhonetic:    0.6,
}

// DefaultAlgorithms returns the standard algorithm set in fusion order.
func DefaultAlgorithms() []string {
	return []string{
		models.AlgorithmJaroWinkler,
		models.AlgorithmLevenshtein,
		models.AlgorithmTrigram,
		models.AlgorithmPhonetic,
	}
}

// similarityScore dispatches on the algorithm identifier. Inputs are expected
// to be normalized already; callers wanting normalization go through
// FuzzyMatcher.CalculateSimilarity. Unknown identifiers are a hard error, not
// a zero score, so configuration typos surface immediately.
func similarityScore(algorithm, s1, s2 string) (float64, error) {
	switch algorithm {
	case models.AlgorithmJaroWinkler:
		return jaroWinklerSimilarity(s1, s2), nil
	case models.AlgorithmLevenshtein:
		return levenshteinSimilarity(s1, s2), nil
	case models.AlgorithmTrigram:
		return trigramSimilarity(s1, s2), nil
	case models.AlgorithmPhonetic:
		return phoneticSimilarity(s1, s2), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

func jaroWinklerSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1
	}
	return matchr.JaroWinkler(s1, s2, false)
}

// levenshteinSimilarity converts rune-level edit distance into a ratio on
// [0, 1]: 1 - distance/len(longer).
func levenshteinSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1
	}

	longest := len([]rune(s1))
	if n := len([]rune(s2)); n > longest {
		longest = n
	}

	distance := levenshtein.ComputeDistance(s1, s2)
	return 1 - float64(distance)/float64(longest)
}

// trigramSimilarity is Jaccard similarity over padded character trigrams.
// Strings shorter than three runes produce no trigrams and score 0.
func trigramSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 && len([]rune(s1)) >= 3 {
		return 1
	}

	grams1 := trigramSet(s1)
	grams2 := trigramSet(s2)
	if len(grams1) == 0 || len(grams2) == 0 {
		return 0
	}

	intersection := 0
	for gram := range grams1 {
		if _, ok := grams2[gram]; ok {
			intersection++
		}
	}

	union := len(grams1) + len(grams2) - intersection
	return float64(intersection) / float64(union)
}

func trigramSet(s string) map[string]struct{} {
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}

	padded := append([]rune("  "), append(runes, ' ', ' ')...)
	grams := make(map[string]struct{}, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		grams[string(padded[i:i+3])] = struct{}{}
	}
	return grams
}

// phoneticSimilarity compares Soundex-style codes: identical codes score 1,
// anything else 0. It exists to rescue sound-alike misspellings the string
// metrics miss ("walmart" vs "wallmart").
func phoneticSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}

	code1 := soundexCode(s1)
	code2 := soundexCode(s2)
	if code1 == "" || code2 == "" {
		return 0
	}
	if code1 == code2 {
		return 1
	}
	return 0
}

// soundexCode builds a 4-character phonetic code: leading letter, then digit
// classes for the remaining consonants with consecutive duplicates collapsed,
// zero-padded. Vowels and H, W, Y are dropped entirely.
func soundexCode(s string) string {
	upper := strings.ToUpper(s)

	var first rune
	var rest []rune
	for _, r := range upper {
		if r < 'A' || r > 'Z' {
			continue
		}
		if first == 0 {
			first = r
			continue
		}
		rest = append(rest, r)
	}
	if first == 0 {
		return ""
	}

	code := []rune{first}
	lastDigit := soundexDigit(first)
	for _, r := range rest {
		digit := soundexDigit(r)
		if digit == 0 {
			continue
		}
		if digit == lastDigit {
			continue
		}
		code = append(code, digit)
		lastDigit = digit
		if len(code) == 4 {
			break
		}
	}

	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

func soundexDigit(r rune) rune {
	switch r {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		return 0
	}
}

// fuseScores combines per-algorithm scores into a weighted average over the
// algorithms that actually ran. Algorithms without a default weight count at
// weight 1.
func fuseScores(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for algorithm, score := range scores {
		weight, ok := defaultAlgorithmWeights[algorithm]
		if !ok {
			weight = 1
		}
		weightedSum += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
