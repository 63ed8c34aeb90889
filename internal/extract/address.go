package extract

import (
	"regexp"
	"strings"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// AddressExtractor finds postal addresses anchored on the zip+city line:
// five-digit German and four-digit Austrian/Swiss codes. The street is
// taken from the same line or, failing that, from the preceding line when
// it looks like one.
type AddressExtractor struct{}

func (e *AddressExtractor) Name() string { return "address" }

func (e *AddressExtractor) Extract(page *model.FetchedPage) ([]model.Candidate, error) {
	lines := strings.Split(page.Text, "\n")
	seen := map[string]bool{}
	var out []model.Candidate

	for i, line := range lines {
		m := zipCityPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		zip, city := m[1], strings.TrimSpace(m[2])
		if !plausibleZip(zip, line) {
			continue
		}

		street := streetOnLine(strings.Trim(line[:strings.Index(line, m[0])], " \t,·|"))
		if street == "" && i > 0 {
			street = streetOnLine(strings.TrimSpace(lines[i-1]))
		}

		country := countryForLine(line, zip)
		key := zip + "|" + strings.ToLower(city)
		if seen[key] {
			continue
		}
		seen[key] = true

		normalized := zip + " " + city
		if street != "" {
			normalized = street + ", " + normalized
		}
		out = append(out, model.Candidate{
			Field:      model.FieldAddress,
			RawValue:   strings.TrimSpace(line),
			Normalized: normalized,
			Method:     model.MethodRegex,
			Source:     page.Type,
			SourceURL:  page.URL,
			Context:    strings.TrimSpace(line),
			Street:     street,
			ZipCode:    zip,
			City:       city,
			Country:    country,
		})
	}

	return out, nil
}

// plausibleZip rejects four and five digit matches that are actually
// phone fragments or years.
func plausibleZip(zip, line string) bool {
	if len(zip) == 5 {
		return true
	}
	// Four digits: require AT/CH context or a street keyword nearby,
	// otherwise "2024 Berlin" style noise slips through.
	low := strings.ToLower(line)
	if countryPrefix.MatchString(line) ||
		strings.Contains(low, "schweiz") || strings.Contains(low, "österreich") ||
		strings.Contains(low, "austria") || strings.Contains(low, "switzerland") {
		return true
	}
	if zip >= "1900" && zip <= "2100" {
		return false
	}
	return streetKeyword.MatchString(line)
}

func streetOnLine(line string) string {
	if line == "" || len(line) > 100 {
		return ""
	}
	m := streetPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	street := strings.TrimSpace(m[1] + " " + m[2])
	// Bare capitalized words with a trailing number ("Telefon 030") are
	// only streets when a street keyword is present or the line is short.
	if !streetKeyword.MatchString(street) && len(strings.Fields(m[1])) > 3 {
		return ""
	}
	if nameTokenDenylist[strings.ToLower(strings.Fields(m[1])[0])] {
		return ""
	}
	return street
}

var countryPrefix = regexp.MustCompile(`\b(?:CH|A|AT)-\d{4}\b`)

func countryForLine(line, zip string) string {
	low := strings.ToLower(line)
	switch {
	case strings.Contains(low, "schweiz") || strings.Contains(low, "switzerland") || strings.Contains(line, "CH-"):
		return "CH"
	case strings.Contains(low, "österreich") || strings.Contains(low, "austria") || strings.Contains(line, "A-") || strings.Contains(line, "AT-"):
		return "AT"
	case len(zip) == 5:
		return "DE"
	default:
		return ""
	}
}
