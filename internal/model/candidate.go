package model

import "strings"

// Candidate is a raw extraction hit before validation. Candidates are
// value objects: extractors construct them and never mutate them after
// return.
type Candidate struct {
	Field      FieldType        `json:"field"`
	RawValue   string           `json:"raw_value"`
	Normalized string           `json:"normalized"`
	Method     ExtractionMethod `json:"method"`
	Source     PageType         `json:"source"`
	SourceURL  string           `json:"source_url,omitempty"`
	Context    string           `json:"context,omitempty"`

	// Field-specific attributes. Zero values mean not applicable.
	Classification EmailClassification `json:"classification,omitempty"`
	Kind           PhoneKind           `json:"kind,omitempty"`
	FirstName      string              `json:"first_name,omitempty"`
	LastName       string              `json:"last_name,omitempty"`
	Role           string              `json:"role,omitempty"`
	Street         string              `json:"street,omitempty"`
	ZipCode        string              `json:"zip_code,omitempty"`
	City           string              `json:"city,omitempty"`
	Country        string              `json:"country,omitempty"`

	// Confidence is only set by LLM providers that self-report it.
	// Rule-based candidates leave it zero and are scored later.
	Confidence float64 `json:"confidence,omitempty"`
}

// DedupKey returns the identity under which duplicate candidates collapse
// during merging: lowercased emails, digit-only phones, case-folded names.
func (c Candidate) DedupKey() string {
	switch c.Field {
	case FieldEmail:
		return string(FieldEmail) + ":" + strings.ToLower(c.Normalized)
	case FieldPhone:
		var digits strings.Builder
		for _, r := range c.Normalized {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		return string(FieldPhone) + ":" + digits.String()
	case FieldPerson:
		name := strings.ToLower(strings.TrimSpace(c.FirstName + " " + c.LastName))
		return string(FieldPerson) + ":" + name
	default:
		return string(c.Field) + ":" + strings.ToLower(strings.TrimSpace(c.Normalized))
	}
}
