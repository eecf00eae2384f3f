package models

// CandidateKind discriminates the supported candidate shapes. The matching
// engine never inspects candidate types at runtime; extraction dispatches on
// this tag alone.
type CandidateKind string

const (
	CandidateText     CandidateKind = "text"
	CandidateRecord   CandidateKind = "record"
	CandidatePattern  CandidateKind = "pattern"
	CandidateExpense  CandidateKind = "expense"
	CandidateMerchant CandidateKind = "merchant"
	CandidateAlias    CandidateKind = "alias"
	CandidateGeneric  CandidateKind = "generic"
)

// GenericFields is the last-resort candidate shape: a loose bag of the fields
// a caller-supplied object may expose. Fallback holds the object's string
// conversion when no named field applies.
type GenericFields struct {
	Name     string
	Title    string
	Value    string
	Fallback string
}

// Candidate is a closed tagged union over everything the matcher can score.
// Exactly one variant field is populated, identified by Kind.
type Candidate struct {
	Kind     CandidateKind
	Text     string
	Record   map[string]interface{}
	Pattern  *CategoryPattern
	Expense  *Expense
	Merchant *CanonicalMerchant
	Alias    *MerchantAlias
	Generic  *GenericFields
}

func NewTextCandidate(text string) Candidate {
	return Candidate{Kind: CandidateText, Text: text}
}

func NewRecordCandidate(record map[string]interface{}) Candidate {
	return Candidate{Kind: CandidateRecord, Record: record}
}

func NewPatternCandidate(pattern *CategoryPattern) Candidate {
	return Candidate{Kind: CandidatePattern, Pattern: pattern}
}

func NewExpenseCandidate(expense *Expense) Candidate {
	return Candidate{Kind: CandidateExpense, Expense: expense}
}

func NewMerchantCandidate(merchant *CanonicalMerchant) Candidate {
	return Candidate{Kind: CandidateMerchant, Merchant: merchant}
}

func NewAliasCandidate(alias *MerchantAlias) Candidate {
	return Candidate{Kind: CandidateAlias, Alias: alias}
}

func NewGenericCandidate(fields GenericFields) Candidate {
	return Candidate{Kind: CandidateGeneric, Generic: &fields}
}

// Identifier returns a stable identity for cache keys and deduplication:
// the entity UUID when the variant carries one, empty otherwise.
func (c Candidate) Identifier() string {
	switch c.Kind {
	case CandidatePattern:
		if c.Pattern != nil {
			return c.Pattern.ID.String()
		}
	case CandidateExpense:
		if c.Expense != nil {
			return c.Expense.ID.String()
		}
	case CandidateMerchant:
		if c.Merchant != nil {
			return c.Merchant.ID.String()
		}
	case CandidateAlias:
		if c.Alias != nil {
			return c.Alias.ID.String()
		}
	}
	return ""
}

// ConfidenceWeight returns the candidate's own confidence multiplier.
// Only pattern candidates carry one; everything else is neutral.
func (c Candidate) ConfidenceWeight() float64 {
	if c.Kind == CandidatePattern && c.Pattern != nil {
		return c.Pattern.EffectiveConfidence()
	}
	return 1.0
}

// MerchantUsageCount returns the usage count for merchant candidates, 0 otherwise
func (c Candidate) MerchantUsageCount() int64 {
	if c.Kind == CandidateMerchant && c.Merchant != nil {
		return c.Merchant.UsageCount
	}
	return 0
}
