package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/impressum-cli/internal/fetch"
	"github.com/leadpilot/impressum-cli/internal/model"
)

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		href string
		text string
		want model.PageType
	}{
		{"https://firma.de/impressum", "", model.PageImpressum},
		{"https://firma.de/impressum.html", "Rechtliches", model.PageImpressum},
		{"https://firma.de/imprint", "", model.PageImpressum},
		{"https://firma.de/rechtliches", "", model.PageImpressum},
		{"https://firma.de/kontakt", "", model.PageKontakt},
		{"https://firma.de/contact", "", model.PageKontakt},
		{"https://firma.de/seite", "Impressum", model.PageImpressum},
		{"https://firma.de/page?id=7", "Kontakt aufnehmen", model.PageKontakt},
		{"https://firma.de/team", "", model.PageTeam},
		{"https://firma.de/ueber-uns", "", model.PageAbout},
		{"https://firma.de/seite", "Über uns", model.PageAbout},
		{"https://firma.de/produkte", "Produkte", ""},
		{"https://firma.de/blog", "Neuigkeiten", ""},
	}
	for _, tt := range tests {
		t.Run(tt.href+"|"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLink(tt.href, tt.text))
		})
	}
}

func TestClassifyURLBeatsText(t *testing.T) {
	// Path says impressum even though the label says Kontakt.
	assert.Equal(t, model.PageImpressum, ClassifyLink("https://firma.de/impressum", "Kontakt"))
}

func TestPrioritizeOrder(t *testing.T) {
	found := map[model.PageType][]string{
		model.PageAbout:     {"https://firma.de/ueber-uns"},
		model.PageImpressum: {"https://firma.de/impressum"},
		model.PageKontakt:   {"https://firma.de/kontakt"},
		model.PageTeam:      {"https://firma.de/team"},
	}
	refs := Prioritize(found)
	require.Len(t, refs, 4)
	assert.Equal(t, model.PageImpressum, refs[0].Type)
	assert.Equal(t, model.PageKontakt, refs[1].Type)
	assert.Equal(t, model.PageTeam, refs[2].Type)
	assert.Equal(t, model.PageAbout, refs[3].Type)
}

type fakeProber struct {
	existing map[string]bool
	calls    []string
}

func (f *fakeProber) Exists(_ context.Context, url string) bool {
	f.calls = append(f.calls, url)
	return f.existing[url]
}

func TestDiscoverProbesWhenNoImpressumLink(t *testing.T) {
	prober := &fakeProber{existing: map[string]bool{
		"https://firma.de/impressum.html": true,
	}}
	d := New(prober, true)

	links := []fetch.Link{{URL: "https://firma.de/produkte", Text: "Produkte"}}
	refs, probed := d.Discover(context.Background(), "https://firma.de/", links)

	require.NotEmpty(t, refs)
	assert.Equal(t, model.PageImpressum, refs[0].Type)
	assert.Equal(t, "https://firma.de/impressum.html", refs[0].URL)
	assert.NotEmpty(t, probed, "probed urls must be reported for pages_checked")
	assert.Contains(t, probed, "https://firma.de/impressum")
}

func TestDiscoverSkipsProbingWhenLinkFound(t *testing.T) {
	prober := &fakeProber{existing: map[string]bool{}}
	d := New(prober, true)

	links := []fetch.Link{{URL: "https://firma.de/impressum", Text: "Impressum"}}
	refs, probed := d.Discover(context.Background(), "https://firma.de/", links)

	require.Len(t, refs, 1)
	assert.Empty(t, probed)
	assert.Empty(t, prober.calls)
}

func TestDiscoverNoProberNoProbing(t *testing.T) {
	d := New(nil, true)
	refs, probed := d.Discover(context.Background(), "https://firma.de/", nil)
	assert.Empty(t, refs)
	assert.Empty(t, probed)
}

func TestClassifyDedupes(t *testing.T) {
	links := []fetch.Link{
		{URL: "https://firma.de/impressum", Text: "Impressum"},
		{URL: "https://firma.de/impressum", Text: "Impressum"},
	}
	found := Classify(links)
	assert.Len(t, found[model.PageImpressum], 1)
}
