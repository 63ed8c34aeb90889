// Package extract pulls contact candidates out of fetched pages using
// deterministic rules. Each extractor handles one field family; the
// pipeline runs all of them and hands the combined candidates to merging
// and scoring.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// Extractor produces candidates from a single fetched page. Extractors
// must be side-effect free and safe for concurrent use.
type Extractor interface {
	Extract(page *model.FetchedPage) ([]model.Candidate, error)
	Name() string
}

// Registry bundles the standard extractor set in execution order.
// Structured data runs first since its hits carry the highest trust.
func Registry(includePersons bool) []Extractor {
	ex := []Extractor{
		&StructuredDataExtractor{},
		&EmailExtractor{},
		&PhoneExtractor{},
		&AddressExtractor{},
		&LegalExtractor{},
	}
	if includePersons {
		ex = append(ex, &PersonExtractor{})
	}
	return ex
}

// RunAll executes every extractor against the page. A failing extractor
// is logged and skipped; one bad parse never hides the other fields.
func RunAll(extractors []Extractor, page *model.FetchedPage) []model.Candidate {
	var all []model.Candidate
	for _, ex := range extractors {
		cands, err := ex.Extract(page)
		if err != nil {
			zap.L().Warn("extract: extractor failed",
				zap.String("extractor", ex.Name()),
				zap.String("url", page.URL),
				zap.Error(err))
			continue
		}
		all = append(all, cands...)
	}
	return all
}

// contextSnippet returns up to width characters around [start,end) for
// provenance on candidates.
func contextSnippet(text string, start, end, width int) string {
	lo := start - width
	if lo < 0 {
		lo = 0
	}
	hi := end + width
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
