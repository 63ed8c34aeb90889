package extract

import (
	"strings"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// LegalExtractor finds the registered company name, trade register entry,
// and VAT ID. These appear almost exclusively on Impressum pages, where
// German law requires them.
type LegalExtractor struct{}

func (e *LegalExtractor) Name() string { return "legal" }

func (e *LegalExtractor) Extract(page *model.FetchedPage) ([]model.Candidate, error) {
	var out []model.Candidate
	seen := map[string]bool{}

	add := func(field model.FieldType, raw, normalized, ctx string) {
		key := string(field) + ":" + strings.ToLower(normalized)
		if normalized == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, model.Candidate{
			Field:      field,
			RawValue:   raw,
			Normalized: normalized,
			Method:     model.MethodRegex,
			Source:     page.Type,
			SourceURL:  page.URL,
			Context:    ctx,
		})
	}

	for _, idx := range legalEntityPattern.FindAllStringSubmatchIndex(page.Text, -1) {
		m := legalEntityPattern.FindStringSubmatch(page.Text[idx[0]:idx[1]])
		name := cleanCompanyName(m[1])
		if name == "" {
			continue
		}
		add(model.FieldCompanyName, m[1], name,
			contextSnippet(page.Text, idx[0], idx[1], 60))
	}

	for _, idx := range tradeRegisterPattern.FindAllStringSubmatchIndex(page.Text, -1) {
		m := tradeRegisterPattern.FindStringSubmatch(page.Text[idx[0]:idx[1]])
		normalized := strings.Join(strings.Fields(m[1]), " ")
		ctx := contextSnippet(page.Text, idx[0], idx[1], 80)
		if court := registerCourtPattern.FindStringSubmatch(ctx); court != nil {
			normalized += ", Amtsgericht " + court[1]
		}
		add(model.FieldTradeRegister, m[1], normalized, ctx)
	}

	for _, idx := range vatIDPattern.FindAllStringSubmatchIndex(page.Text, -1) {
		m := vatIDPattern.FindStringSubmatch(page.Text[idx[0]:idx[1]])
		normalized := strings.ToUpper(strings.NewReplacer(" ", "", "-", "", ".", "").Replace(m[1]))
		add(model.FieldVATID, m[1], normalized,
			contextSnippet(page.Text, idx[0], idx[1], 60))
	}

	return out, nil
}

// cleanCompanyName trims sentence fragments that the entity-suffix regex
// drags in. The name starts at the last sentence boundary before the
// legal form.
func cleanCompanyName(raw string) string {
	name := strings.TrimSpace(raw)
	for _, sep := range []string{". ", ": ", " der ", " die ", " bei ", " durch "} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = strings.TrimSpace(name[idx+len(sep):])
		}
	}
	// Still too long means the regex caught prose, not a name.
	if len(name) < 4 || len(strings.Fields(name)) > 8 {
		return ""
	}
	return name
}
