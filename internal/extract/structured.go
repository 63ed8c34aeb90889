package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/textnorm"
)

// StructuredDataExtractor reads schema.org JSON-LD blocks. Author-supplied
// machine-readable data is the most trustworthy source; its candidates
// win merges against everything else.
type StructuredDataExtractor struct{}

func (e *StructuredDataExtractor) Name() string { return "structured_data" }

var ldJSONBlock = regexp.MustCompile(`(?is)<script[^>]+type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)

var contactTypes = map[string]bool{
	"Organization":  true,
	"LocalBusiness": true,
	"Corporation":   true,
	"Person":        true,
	"LegalService":  true,
	"Dentist":       true,
	"Physician":     true,
	"Store":         true,
	"Restaurant":    true,
}

func (e *StructuredDataExtractor) Extract(page *model.FetchedPage) ([]model.Candidate, error) {
	var out []model.Candidate
	for _, m := range ldJSONBlock.FindAllStringSubmatch(page.HTML, -1) {
		var doc any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &doc); err != nil {
			// One malformed block must not cost the others.
			zap.L().Debug("extract: skipping malformed json-ld block",
				zap.String("url", page.URL), zap.Error(err))
			continue
		}
		out = append(out, walkLD(doc, page)...)
	}
	return out, nil
}

func walkLD(doc any, page *model.FetchedPage) []model.Candidate {
	var out []model.Candidate
	switch v := doc.(type) {
	case []any:
		for _, item := range v {
			out = append(out, walkLD(item, page)...)
		}
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				out = append(out, walkLD(item, page)...)
			}
		}
		if typeMatches(v["@type"]) {
			out = append(out, ldCandidates(v, page)...)
		}
	}
	return out
}

func typeMatches(t any) bool {
	switch v := t.(type) {
	case string:
		return contactTypes[v]
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && contactTypes[s] {
				return true
			}
		}
	}
	return false
}

func ldCandidates(obj map[string]any, page *model.FetchedPage) []model.Candidate {
	var out []model.Candidate

	mk := func(field model.FieldType, value string) model.Candidate {
		return model.Candidate{
			Field:      field,
			RawValue:   value,
			Normalized: value,
			Method:     model.MethodStructuredData,
			Source:     page.Type,
			SourceURL:  page.URL,
			Context:    "json-ld",
		}
	}

	if email := ldString(obj["email"]); email != "" {
		addr := strings.ToLower(strings.TrimPrefix(email, "mailto:"))
		if ValidEmail(addr) {
			c := mk(model.FieldEmail, addr)
			c.Classification = ClassifyEmail(addr)
			out = append(out, c)
		}
	}

	if tel := ldString(obj["telephone"]); tel != "" {
		if normalized, err := textnorm.NormalizePhone(tel); err == nil {
			c := mk(model.FieldPhone, normalized)
			c.RawValue = tel
			c.Kind = model.PhoneMain
			out = append(out, c)
		}
	}

	if fax := ldString(obj["faxNumber"]); fax != "" {
		if normalized, err := textnorm.NormalizePhone(fax); err == nil {
			c := mk(model.FieldPhone, normalized)
			c.RawValue = fax
			c.Kind = model.PhoneFax
			out = append(out, c)
		}
	}

	if isType(obj["@type"], "Person") {
		if name := ldString(obj["name"]); name != "" {
			if first, last, ok := ParseName(name); ok {
				c := mk(model.FieldPerson, first+" "+last)
				c.FirstName, c.LastName = first, last
				c.Role = ldString(obj["jobTitle"])
				out = append(out, c)
			}
		}
	} else if name := ldString(obj["name"]); name != "" && len(name) < 80 {
		out = append(out, mk(model.FieldCompanyName, strings.TrimSpace(name)))
	}

	if addr, ok := obj["address"].(map[string]any); ok {
		street := ldString(addr["streetAddress"])
		zip := ldString(addr["postalCode"])
		city := ldString(addr["addressLocality"])
		if zip != "" || city != "" || street != "" {
			parts := []string{}
			if street != "" {
				parts = append(parts, street)
			}
			if zip != "" || city != "" {
				parts = append(parts, strings.TrimSpace(zip+" "+city))
			}
			c := mk(model.FieldAddress, strings.Join(parts, ", "))
			c.Street, c.ZipCode, c.City = street, zip, city
			c.Country = ldString(addr["addressCountry"])
			out = append(out, c)
		}
	}

	// contactPoint may be an object or a list of them.
	switch cp := obj["contactPoint"].(type) {
	case map[string]any:
		out = append(out, contactPointCandidates(cp, page)...)
	case []any:
		for _, item := range cp {
			if m, ok := item.(map[string]any); ok {
				out = append(out, contactPointCandidates(m, page)...)
			}
		}
	}

	return out
}

func contactPointCandidates(cp map[string]any, page *model.FetchedPage) []model.Candidate {
	var out []model.Candidate
	if email := ldString(cp["email"]); email != "" {
		addr := strings.ToLower(strings.TrimPrefix(email, "mailto:"))
		if ValidEmail(addr) {
			out = append(out, model.Candidate{
				Field: model.FieldEmail, RawValue: email, Normalized: addr,
				Method: model.MethodStructuredData, Source: page.Type,
				SourceURL: page.URL, Context: "json-ld contactPoint",
				Classification: ClassifyEmail(addr),
			})
		}
	}
	if tel := ldString(cp["telephone"]); tel != "" {
		if normalized, err := textnorm.NormalizePhone(tel); err == nil {
			out = append(out, model.Candidate{
				Field: model.FieldPhone, RawValue: tel, Normalized: normalized,
				Method: model.MethodStructuredData, Source: page.Type,
				SourceURL: page.URL, Context: "json-ld contactPoint",
				Kind: model.PhoneMain,
			})
		}
	}
	return out
}

func isType(t any, want string) bool {
	switch v := t.(type) {
	case string:
		return v == want
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func ldString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
