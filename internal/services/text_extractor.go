package services

import (
	"regexp"
	"strings"

	"expense-match/internal/models"
)

// Matches debug-formatted object dumps ("#<Widget:0x007f...>", "&{...}",
// bare addresses) that occasionally leak into generic candidate fields.
var opaqueValuePattern = regexp.MustCompile(`(^#<.*>$|^&?\{.*\}$|\b0x[0-9a-fA-F]{4,}\b)`)

// recordTextKeys is the priority order for free-form record candidates.
var recordTextKeys = []string{"text", "name", "value", "merchant_name", "description"}

// TextExtractor pulls the comparable string out of a candidate. It never
// errors: a candidate it cannot read yields "" and is skipped by the matcher.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(candidate *models.Candidate) string {
	if candidate == nil {
		return ""
	}

	switch candidate.Kind {
	case models.CandidateText:
		return candidate.Text
	case models.CandidateRecord:
		return e.extractFromRecord(candidate.Record)
	case models.CandidatePattern:
		if candidate.Pattern == nil {
			return ""
		}
		return candidate.Pattern.Value
	case models.CandidateExpense:
		return e.extractFromExpense(candidate.Expense)
	case models.CandidateMerchant:
		if candidate.Merchant == nil {
			return ""
		}
		return candidate.Merchant.Name
	case models.CandidateAlias:
		return e.extractFromAlias(candidate.Alias)
	case models.CandidateGeneric:
		return e.extractFromGeneric(candidate.Generic)
	default:
		return ""
	}
}

func (e *TextExtractor) extractFromRecord(record map[string]any) string {
	if len(record) == 0 {
		return ""
	}

	for _, key := range recordTextKeys {
		if text := recordString(record, key); text != "" {
			return text
		}
	}
	return ""
}

// recordString looks a key up directly, then case-insensitively, accepting
// only string values.
func recordString(record map[string]any, key string) string {
	if raw, ok := record[key]; ok {
		if text, ok := raw.(string); ok {
			return strings.TrimSpace(text)
		}
		return ""
	}

	for candidate, raw := range record {
		if strings.EqualFold(candidate, key) {
			if text, ok := raw.(string); ok {
				return strings.TrimSpace(text)
			}
			return ""
		}
	}
	return ""
}

func (e *TextExtractor) extractFromExpense(expense *models.Expense) string {
	if expense == nil {
		return ""
	}
	if expense.MerchantName != "" {
		return expense.MerchantName
	}
	if expense.NormalizedMerchant != "" {
		return expense.NormalizedMerchant
	}
	return expense.Description
}

func (e *TextExtractor) extractFromAlias(alias *models.MerchantAlias) string {
	if alias == nil {
		return ""
	}
	if alias.NormalizedName != "" {
		return alias.NormalizedName
	}
	return alias.RawName
}

func (e *TextExtractor) extractFromGeneric(generic *models.GenericFields) string {
	if generic == nil {
		return ""
	}

	for _, field := range []string{generic.Name, generic.Title, generic.Value, generic.Fallback} {
		trimmed := strings.TrimSpace(field)
		if trimmed == "" {
			continue
		}
		if opaqueValuePattern.MatchString(trimmed) {
			continue
		}
		return trimmed
	}
	return ""
}
