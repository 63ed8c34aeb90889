// Package discover locates the pages on a company site that carry
// contact data: Impressum first, then Kontakt, Team, and About. German
// sites are legally required to link an Impressum from every page, so
// link classification almost always succeeds; direct path probing is the
// fallback for sites that hide it behind scripts.
package discover

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/fetch"
	"github.com/leadpilot/impressum-cli/internal/model"
)

// URL path fragments per page type.
var urlPatterns = map[model.PageType][]string{
	model.PageImpressum: {"impressum", "imprint", "legal-notice", "legalnotice", "offenlegung", "rechtliches", "anbieterkennzeichnung"},
	model.PageKontakt:   {"kontakt", "contact", "anfahrt", "standort"},
	model.PageTeam:      {"team", "mitarbeiter", "ansprechpartner", "ueber-uns/team"},
	model.PageAbout:     {"ueber-uns", "über-uns", "uber-uns", "about", "unternehmen", "wir-ueber-uns", "profil"},
}

// Anchor text keywords per page type, matched case-insensitively.
var linkTextPatterns = map[model.PageType][]string{
	model.PageImpressum: {"impressum", "imprint", "legal notice", "offenlegung", "anbieterkennzeichnung"},
	model.PageKontakt:   {"kontakt", "contact", "anfahrt", "so finden sie uns"},
	model.PageTeam:      {"team", "unser team", "mitarbeiter", "ansprechpartner"},
	model.PageAbout:     {"über uns", "ueber uns", "about", "unternehmen", "wir über uns"},
}

// Paths probed directly when link classification finds no Impressum.
var probePaths = map[model.PageType][]string{
	model.PageImpressum: {"/impressum", "/impressum.html", "/impressum.php", "/imprint", "/legal-notice", "/offenlegung", "/rechtliches"},
	model.PageKontakt:   {"/kontakt", "/kontakt.html", "/contact", "/kontakt.php"},
}

// PageRef is a discovered page with its classification.
type PageRef struct {
	URL  string
	Type model.PageType
}

// Prober checks whether a URL exists without fetching its body.
type Prober interface {
	Exists(ctx context.Context, url string) bool
}

// Discoverer classifies links and probes well-known paths.
type Discoverer struct {
	prober     Prober
	probePaths bool
}

// New creates a Discoverer. A nil prober disables path probing.
func New(prober Prober, enableProbing bool) *Discoverer {
	return &Discoverer{prober: prober, probePaths: enableProbing && prober != nil}
}

// ClassifyLink assigns a page type from the URL path and anchor text, or
// "" when neither matches. URL patterns run before text patterns; paths
// lie less often than labels.
func ClassifyLink(href, text string) model.PageType {
	path := strings.ToLower(href)
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		path = strings.ToLower(u.Path)
	}
	for _, pt := range model.PagePriority() {
		for _, pattern := range urlPatterns[pt] {
			if strings.Contains(path, pattern) {
				return pt
			}
		}
	}

	lowText := strings.ToLower(strings.TrimSpace(text))
	if lowText == "" {
		return ""
	}
	for _, pt := range model.PagePriority() {
		for _, pattern := range linkTextPatterns[pt] {
			if strings.Contains(lowText, pattern) {
				return pt
			}
		}
	}
	return ""
}

// Classify buckets a page's links by page type, preserving encounter
// order within each bucket.
func Classify(links []fetch.Link) map[model.PageType][]string {
	found := map[model.PageType][]string{}
	seen := map[string]bool{}
	for _, link := range links {
		pt := ClassifyLink(link.URL, link.Text)
		if pt == "" || seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		found[pt] = append(found[pt], link.URL)
	}
	return found
}

// Discover classifies the homepage's links and, when no Impressum link
// was found, probes the conventional paths. Probed URLs are returned so
// the caller can record every page checked.
func (d *Discoverer) Discover(ctx context.Context, homepageURL string, links []fetch.Link) (refs []PageRef, probed []string) {
	found := Classify(links)

	if len(found[model.PageImpressum]) == 0 && d.probePaths {
		base := fetch.BaseURL(homepageURL)
		for _, pt := range []model.PageType{model.PageImpressum, model.PageKontakt} {
			if len(found[pt]) > 0 {
				continue
			}
			for _, path := range probePaths[pt] {
				probeURL := base + path
				probed = append(probed, probeURL)
				if d.prober.Exists(ctx, probeURL) {
					found[pt] = append(found[pt], probeURL)
					break
				}
			}
		}
		if len(probed) > 0 {
			zap.L().Debug("discover: probed direct paths",
				zap.String("base", base),
				zap.Int("probes", len(probed)))
		}
	}

	return Prioritize(found), probed
}

// Prioritize flattens a classification map into descending priority
// order: impressum, kontakt, team, about, then homepage.
func Prioritize(found map[model.PageType][]string) []PageRef {
	var refs []PageRef
	for pt, urls := range found {
		for _, u := range urls {
			refs = append(refs, PageRef{URL: u, Type: pt})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return model.PageRank(refs[i].Type) < model.PageRank(refs[j].Type)
	})
	return refs
}
