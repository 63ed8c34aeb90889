package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/impressum-cli/internal/model"
)

func TestPersonExtractorRolePattern(t *testing.T) {
	page := impressumPage("", "Müller GmbH\nGeschäftsführer: Max Mustermann\nHRB 12345")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	assert.Equal(t, "Max", cands[0].FirstName)
	assert.Equal(t, "Mustermann", cands[0].LastName)
	assert.Equal(t, "Geschäftsführer", cands[0].Role)
}

func TestPersonExtractorFeminineForm(t *testing.T) {
	page := impressumPage("", "Inhaberin: Dr. Erika Musterfrau")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	assert.Equal(t, "Erika", cands[0].FirstName)
	assert.Equal(t, "Musterfrau", cands[0].LastName)
	assert.Equal(t, "Inhaber", cands[0].Role)
}

func TestPersonExtractorMultipleManagers(t *testing.T) {
	page := impressumPage("", "Geschäftsführer: Hans Schmidt und Peter Wagner")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "Schmidt", cands[0].LastName)
	assert.Equal(t, "Wagner", cands[1].LastName)
}

func TestPersonExtractorExcludedRoles(t *testing.T) {
	page := impressumPage("", "Datenschutzbeauftragter: Klaus Beispiel\nWebdesign: Anna Agentur")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	for _, c := range cands {
		assert.NotEqual(t, "Klaus", c.FirstName)
		assert.NotEqual(t, "Anna", c.FirstName)
	}
}

func TestPersonExtractorNoFallbackOnHomepage(t *testing.T) {
	page := &model.FetchedPage{
		URL:  "https://firma.de/",
		Type: model.PageHomepage,
		Text: "Willkommen bei Schmidt Consulting. Thomas Becker freut sich auf Sie.",
	}
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	assert.Empty(t, cands, "bare capitalized pairs only count on impressum/team/about")
}

func TestPersonExtractorFallbackOnTeamPage(t *testing.T) {
	page := &model.FetchedPage{
		URL:  "https://firma.de/team",
		Type: model.PageTeam,
		Text: "Unser Büro\nThomas Becker\nSeit 2010 dabei.",
	}
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	assert.Equal(t, "Thomas", cands[0].FirstName)
	assert.Equal(t, "Becker", cands[0].LastName)
}

func TestPersonExtractorRejectsChrome(t *testing.T) {
	page := impressumPage("", "Impressum Kontakt\nÖffnungszeiten Montag\nAlle Rechte vorbehalten")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestPersonExtractorRejectsLawFirmTerms(t *testing.T) {
	page := impressumPage("", "Kanzlei Schmidt\nSchwerpunkte: Medizinrecht Arbeitsrecht\nBaurecht Verkehrsrecht")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	assert.Empty(t, cands, "firm names and practice areas are not persons")
}

func TestPersonExtractorPairStaysOnOneLine(t *testing.T) {
	// "Wagner" ends one line, "Beratung" starts the next; the pair
	// fallback must not join them across the break.
	page := impressumPage("", "Herrn Wagner\nBeratung und Verkauf\n\nGeschäftsführer: Hans Wagner")
	cands, err := (&PersonExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Hans", cands[0].FirstName)
	assert.Equal(t, "Wagner", cands[0].LastName)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
		ok    bool
	}{
		{"Max Mustermann", "Max", "Mustermann", true},
		{"Dr. Max Mustermann", "Max", "Mustermann", true},
		{"Prof. Dr. Erika Musterfrau", "Erika", "Musterfrau", true},
		{"Mustermann, Max", "Max", "Mustermann", true},
		{"Karl von Habsburg", "Karl", "von Habsburg", true},
		{"Anna Maria Schmidt", "Anna", "Maria Schmidt", true},
		{"Dipl.-Ing. Hans Wagner", "Hans", "Wagner", true},
		{"Hans Albrecht", "Hans", "Albrecht", true},
		{"Max", "", "", false},
		{"Arbeitsrecht Mietrecht", "", "", false},
		{"Baurecht Steuerrecht", "", "", false},
		{"GmbH Berlin", "", "", false},
		{"Impressum Kontakt", "", "", false},
		{"Hauptstraße Berlin", "", "", false},
		{"Max2 Mustermann", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			first, last, ok := ParseName(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.first, first)
				assert.Equal(t, tt.last, last)
			}
		})
	}
}
