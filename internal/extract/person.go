package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// PersonExtractor finds the responsible person behind a site. Role-labeled
// names (Geschäftsführer, Inhaber, ...) are primary; a capitalized-pair
// fallback runs only on page types where names are expected. Names are
// never invented: a candidate exists only when its tokens literally occur
// in the page text.
type PersonExtractor struct{}

func (e *PersonExtractor) Name() string { return "person" }

// Pair tokens must share a line: a heading followed by the first word of
// the next paragraph is not a name.
var capitalizedPair = regexp.MustCompile(`\b([A-ZÄÖÜ][a-zäöüß]{2,})[^\S\n]+((?:von|van|de|zu|zur|vom)[^\S\n]+)?([A-ZÄÖÜ][a-zäöüß]{2,}(?:-[A-ZÄÖÜ][a-zäöüß]{2,})?)\b`)

var nameSplitter = regexp.MustCompile(`\s+und\s+|\s*&\s*|\s*/\s*`)

func (e *PersonExtractor) Extract(page *model.FetchedPage) ([]model.Candidate, error) {
	seen := map[string]bool{}
	var out []model.Candidate

	add := func(first, last, role string, method model.ExtractionMethod, ctx string) {
		key := strings.ToLower(first + " " + last)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, model.Candidate{
			Field:      model.FieldPerson,
			RawValue:   strings.TrimSpace(first + " " + last),
			Normalized: strings.TrimSpace(first + " " + last),
			Method:     method,
			Source:     page.Type,
			SourceURL:  page.URL,
			Context:    ctx,
			FirstName:  first,
			LastName:   last,
			Role:       role,
		})
	}

	for _, re := range rolePatterns {
		for _, idx := range re.FindAllStringSubmatchIndex(page.Text, -1) {
			m := re.FindStringSubmatch(page.Text[idx[0]:idx[1]])
			if len(m) < 3 {
				continue
			}
			role := normalizeRole(m[1])
			ctx := contextSnippet(page.Text, idx[0], idx[1], 80)
			if excludedRolePattern.MatchString(ctx) {
				continue
			}
			for _, chunk := range nameSplitter.Split(m[2], -1) {
				first, last, ok := ParseName(chunk)
				if !ok {
					continue
				}
				add(first, last, role, model.MethodRegex, ctx)
			}
		}
	}

	// Fallback only where names plausibly appear; homepage hero text is
	// too noisy for bare capitalized pairs.
	if page.Type == model.PageImpressum || page.Type == model.PageTeam || page.Type == model.PageAbout {
		for _, idx := range capitalizedPair.FindAllStringSubmatchIndex(page.Text, -1) {
			m := capitalizedPair.FindStringSubmatch(page.Text[idx[0]:idx[1]])
			ctx := contextSnippet(page.Text, idx[0], idx[1], 80)
			if excludedRolePattern.MatchString(ctx) {
				continue
			}
			first, last, ok := ParseName(m[0])
			if !ok {
				continue
			}
			add(first, last, "", model.MethodRegex, ctx)
		}
	}

	return out, nil
}

func normalizeRole(raw string) string {
	role := strings.TrimSpace(strings.ToLower(raw))
	switch {
	case strings.HasPrefix(role, "geschäftsführ"):
		return "Geschäftsführer"
	case strings.HasPrefix(role, "inhaber"):
		return "Inhaber"
	case strings.HasPrefix(role, "vorstand"):
		return "Vorstand"
	case strings.HasPrefix(role, "gründer"):
		return "Gründer"
	case strings.HasPrefix(role, "ansprechpartner"):
		return "Ansprechpartner"
	case strings.HasPrefix(role, "verantwortlich"):
		return "Verantwortlicher"
	case strings.HasPrefix(role, "vertret"):
		return "Vertretungsberechtigter"
	default:
		runes := []rune(role)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
}

// ParseName splits a raw name into first and last name. Titles are
// stripped, "Last, First" order is flipped, and particles (von, van, zu)
// stay with the surname. Returns ok=false for anything that fails the
// token checks, which is the main defense against page chrome posing as
// names.
func ParseName(raw string) (first, last string, ok bool) {
	s := nameTitlePattern.ReplaceAllString(strings.TrimSpace(raw), "")
	s = strings.Trim(s, " \t.:;|-")
	if s == "" {
		return "", "", false
	}

	// "Mustermann, Max" order.
	if parts := strings.SplitN(s, ",", 2); len(parts) == 2 {
		f, l := strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
		if validNameToken(f) && validNameToken(l) {
			return f, l, true
		}
	}

	tokens := strings.Fields(s)
	if len(tokens) < 2 || len(tokens) > 4 {
		return "", "", false
	}
	for i, tok := range tokens {
		if nameParticles[strings.ToLower(tok)] && i > 0 {
			continue
		}
		if !validNameToken(tok) {
			return "", "", false
		}
	}
	return tokens[0], strings.Join(tokens[1:], " "), true
}

func validNameToken(tok string) bool {
	if len(tok) < 2 || nameTokenDenylist[strings.ToLower(tok)] {
		return false
	}
	runes := []rune(tok)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes {
		if unicode.IsDigit(r) {
			return false
		}
	}
	// Street names pass the capitalization check but are not surnames.
	low := strings.ToLower(tok)
	for _, suf := range []string{"straße", "strasse", "weg", "platz", "allee", "gasse"} {
		if strings.HasSuffix(low, suf) && len(low) > len(suf) {
			return false
		}
	}
	// Legal practice areas (Baurecht, Verkehrsrecht, ...) look like
	// surnames on law-firm pages. Albrecht and Ruprecht are surnames.
	if strings.HasSuffix(low, "recht") && len(low) > len("recht") && !rechtSurnames[low] {
		return false
	}
	return true
}
