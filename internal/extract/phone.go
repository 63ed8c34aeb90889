package extract

import (
	"strings"

	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/textnorm"
)

// PhoneExtractor finds phone numbers from tel: links and labeled or bare
// numbers in text. Labels determine the kind; fax numbers are emitted as
// their own kind and never become the primary phone.
type PhoneExtractor struct{}

func (e *PhoneExtractor) Name() string { return "phone" }

func (e *PhoneExtractor) Extract(page *model.FetchedPage) ([]model.Candidate, error) {
	seen := map[string]bool{}
	var out []model.Candidate

	add := func(raw string, method model.ExtractionMethod, kind model.PhoneKind, ctx string) {
		normalized, err := textnorm.NormalizePhone(raw)
		if err != nil {
			return
		}
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		out = append(out, model.Candidate{
			Field:      model.FieldPhone,
			RawValue:   strings.TrimSpace(raw),
			Normalized: normalized,
			Method:     method,
			Source:     page.Type,
			SourceURL:  page.URL,
			Context:    ctx,
			Kind:       kind,
		})
	}

	for _, m := range telPattern.FindAllStringSubmatch(page.HTML, -1) {
		add(m[1], model.MethodDirectLink, model.PhoneMain, "tel link")
	}

	for _, line := range strings.Split(page.Text, "\n") {
		labels := phoneLineLabel.FindAllStringSubmatchIndex(line, -1)
		if labels == nil {
			// Unlabeled numbers still count, at regex trust.
			for _, num := range phoneNumber.FindAllString(line, -1) {
				add(num, model.MethodRegex, model.PhoneMain, strings.TrimSpace(line))
			}
			continue
		}
		// Each label owns the text up to the next label.
		for i, lab := range labels {
			word := strings.ToLower(strings.TrimRight(line[lab[2]:lab[3]], ".:"))
			end := len(line)
			if i+1 < len(labels) {
				end = labels[i+1][0]
			}
			segment := line[lab[1]:end]
			num := phoneNumber.FindString(segment)
			if num == "" {
				continue
			}
			kind := model.PhoneMain
			switch {
			case faxLabels[word]:
				kind = model.PhoneFax
			case mobileLabels[word]:
				kind = model.PhoneMobile
			}
			add(num, model.MethodRegex, kind, strings.TrimSpace(line))
		}
	}

	return out, nil
}
