package model

// Entity is a validated, scored contact datum. Only the scorer creates
// entities; anything below the confidence floor never becomes one.
type Entity struct {
	Type           FieldType         `json:"type"`
	Value          string            `json:"value"`
	StructuredData map[string]string `json:"structured_data,omitempty"`
	Confidence     float64           `json:"confidence"`
	Source         PageType          `json:"source"`
	SourceURL      string            `json:"source_url,omitempty"`
	Method         ExtractionMethod  `json:"method"`
	IsFallback     bool              `json:"is_fallback"`
	IsVerified     bool              `json:"is_verified"`
	Flags          []string          `json:"flags,omitempty"`
}
