package services

import (
	"regexp"
	"strings"
	"sync"

	"github.com/mozillazg/go-unidecode"
)

// NormalizerOptions toggles the individual normalization stages. All stages
// are on by default; FoldDiacritics corresponds to Spanish/accented-input
// handling.
type NormalizerOptions struct {
	FoldDiacritics     bool
	StripNoise         bool
	Lowercase          bool
	CollapseWhitespace bool
	MaxCacheEntries    int
}

func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		FoldDiacritics:     true,
		StripNoise:         true,
		Lowercase:          true,
		CollapseWhitespace: true,
		MaxCacheEntries:    10000,
	}
}

// Transaction-feed noise: processor prefixes ("SQ *", "PAYPAL *"), masked
// card fragments and store numbers ("#4521", "XXXX1234"), and corporate
// suffixes. Applied before lowercasing, hence the (?i) flags.
var (
	processorPrefixPattern = regexp.MustCompile(`(?i)^(sq|paypal|pp|tst|sp|amzn|ach|pos)\s*\*\s*`)
	asteriskPattern        = regexp.MustCompile(`\*+`)
	trailingDigitsPattern  = regexp.MustCompile(`(?i)\s*[#x*]*\d{4,}$`)
	corporateSuffixPattern = regexp.MustCompile(`(?i)\s+(inc|llc|ltd|corp|co|s\.?a\.?)\.?\s*$`)
	nonWordPattern         = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

var spanishFoldings = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c',
	'Á': 'A', 'À': 'A', 'Ä': 'A', 'Â': 'A',
	'É': 'E', 'È': 'E', 'Ë': 'E', 'Ê': 'E',
	'Í': 'I', 'Ì': 'I', 'Ï': 'I', 'Î': 'I',
	'Ó': 'O', 'Ò': 'O', 'Ö': 'O', 'Ô': 'O',
	'Ú': 'U', 'Ù': 'U', 'Ü': 'U', 'Û': 'U',
	'Ñ': 'N', 'Ç': 'C',
}

// TextNormalizer canonicalizes raw transaction text for comparison. It keeps
// a bounded cache of normalized forms; once the cap is reached new entries
// are computed but no longer stored. Normalization is idempotent, so feeding
// an already-normalized string back in returns it unchanged.
type TextNormalizer struct {
	options NormalizerOptions

	// MerchantNormalizer, when set, replaces the default pipeline for
	// merchant names in NormalizeMerchant.
	MerchantNormalizer func(string) string

	mu    sync.RWMutex
	cache map[string]string
}

func NewTextNormalizer(options NormalizerOptions) *TextNormalizer {
	return &TextNormalizer{
		options: options,
		cache:   make(map[string]string),
	}
}

func NewDefaultTextNormalizer() *TextNormalizer {
	return NewTextNormalizer(DefaultNormalizerOptions())
}

func (n *TextNormalizer) Normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	n.mu.RLock()
	cached, ok := n.cache[trimmed]
	n.mu.RUnlock()
	if ok {
		return cached
	}

	result := trimmed
	if n.options.FoldDiacritics {
		result = foldDiacritics(result)
	}
	if n.options.StripNoise {
		result = stripNoise(result)
	}
	if n.options.Lowercase {
		result = strings.ToLower(result)
	}
	if n.options.CollapseWhitespace {
		result = nonWordPattern.ReplaceAllString(result, " ")
		result = strings.Join(strings.Fields(result), " ")
	}

	n.mu.Lock()
	if len(n.cache) < n.options.MaxCacheEntries {
		n.cache[trimmed] = result
	}
	n.mu.Unlock()

	return result
}

// NormalizeMerchant applies the merchant-specific normalizer when one is
// configured and falls back to the standard pipeline otherwise.
func (n *TextNormalizer) NormalizeMerchant(name string) string {
	if n.MerchantNormalizer != nil {
		return n.MerchantNormalizer(name)
	}
	return n.Normalize(name)
}

func (n *TextNormalizer) CacheSize() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.cache)
}

func (n *TextNormalizer) ClearCache() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cache = make(map[string]string)
}

func foldDiacritics(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	ascii := true
	for _, r := range s {
		if folded, ok := spanishFoldings[r]; ok {
			builder.WriteRune(folded)
			continue
		}
		if r > 127 {
			ascii = false
		}
		builder.WriteRune(r)
	}

	result := builder.String()
	if !ascii {
		// Anything beyond the Spanish table goes through full
		// transliteration.
		result = unidecode.Unidecode(result)
	}
	return result
}

func stripNoise(s string) string {
	s = processorPrefixPattern.ReplaceAllString(s, "")
	s = asteriskPattern.ReplaceAllString(s, " ")
	s = trailingDigitsPattern.ReplaceAllString(s, "")
	s = corporateSuffixPattern.ReplaceAllString(s, "")
	return s
}
