package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/impressum-cli/internal/model"
)

func TestAddressExtractorGerman(t *testing.T) {
	page := impressumPage("", "Müller GmbH\nHauptstraße 5\n10115 Berlin\nDeutschland")
	cands, err := (&AddressExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Hauptstraße 5", cands[0].Street)
	assert.Equal(t, "10115", cands[0].ZipCode)
	assert.Equal(t, "Berlin", cands[0].City)
	assert.Equal(t, "DE", cands[0].Country)
}

func TestAddressExtractorInlineStreet(t *testing.T) {
	page := impressumPage("", "Anschrift: Marktplatz 12a, 80331 München")
	cands, err := (&AddressExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "80331", cands[0].ZipCode)
	assert.Equal(t, "München", cands[0].City)
}

func TestAddressExtractorSwiss(t *testing.T) {
	page := impressumPage("", "Bahnhofstrasse 10\nCH-8001 Zürich\nSchweiz")
	cands, err := (&AddressExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "8001", cands[0].ZipCode)
	assert.Equal(t, "Zürich", cands[0].City)
	assert.Equal(t, "CH", cands[0].Country)
}

func TestAddressExtractorRejectsYearCity(t *testing.T) {
	page := impressumPage("", "Gegründet 1995 Berlin als Familienbetrieb")
	cands, err := (&AddressExtractor{}).Extract(page)
	require.NoError(t, err)
	assert.Empty(t, cands)
}

func TestAddressExtractorMultiWordCity(t *testing.T) {
	page := impressumPage("", "Industrieweg 3\n60311 Frankfurt am Main")
	cands, err := (&AddressExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Frankfurt am Main", cands[0].City)
	assert.Equal(t, "Industrieweg 3", cands[0].Street)
}

func TestLegalExtractor(t *testing.T) {
	page := impressumPage("", "Müller & Söhne GmbH\nRegistergericht: Amtsgericht Charlottenburg\nHRB 123456\nUmsatzsteuer-ID: DE 123456789")
	cands, err := (&LegalExtractor{}).Extract(page)
	require.NoError(t, err)

	byField := map[model.FieldType]model.Candidate{}
	for _, c := range cands {
		byField[c.Field] = c
	}
	assert.Equal(t, "Müller & Söhne GmbH", byField[model.FieldCompanyName].Normalized)
	assert.Contains(t, byField[model.FieldTradeRegister].Normalized, "HRB 123456")
	assert.Contains(t, byField[model.FieldTradeRegister].Normalized, "Charlottenburg")
	assert.Equal(t, "DE123456789", byField[model.FieldVATID].Normalized)
}

func TestLegalExtractorAustrianVAT(t *testing.T) {
	page := impressumPage("", "UID: ATU 12345678")
	cands, err := (&LegalExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, model.FieldVATID, cands[0].Field)
	assert.Equal(t, "ATU12345678", cands[0].Normalized)
}

func TestStructuredDataExtractor(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@context":"https://schema.org","@type":"LocalBusiness","name":"Müller GmbH",
	 "email":"info@mueller.de","telephone":"+49 30 1234567","faxNumber":"+49 30 1234568",
	 "address":{"@type":"PostalAddress","streetAddress":"Hauptstraße 5","postalCode":"10115","addressLocality":"Berlin","addressCountry":"DE"}}
	</script></head></html>`
	page := impressumPage(html, "")
	cands, err := (&StructuredDataExtractor{}).Extract(page)
	require.NoError(t, err)

	byField := map[model.FieldType][]model.Candidate{}
	for _, c := range cands {
		assert.Equal(t, model.MethodStructuredData, c.Method)
		byField[c.Field] = append(byField[c.Field], c)
	}
	require.Len(t, byField[model.FieldEmail], 1)
	assert.Equal(t, "info@mueller.de", byField[model.FieldEmail][0].Normalized)
	require.Len(t, byField[model.FieldPhone], 2)
	assert.Equal(t, "Müller GmbH", byField[model.FieldCompanyName][0].Normalized)
	require.Len(t, byField[model.FieldAddress], 1)
	assert.Equal(t, "Berlin", byField[model.FieldAddress][0].City)
}

func TestStructuredDataPersonAndGraph(t *testing.T) {
	html := `<script type="application/ld+json">
	{"@graph":[{"@type":"Person","name":"Dr. Max Mustermann","jobTitle":"Geschäftsführer"}]}
	</script>`
	page := impressumPage(html, "")
	cands, err := (&StructuredDataExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Max", cands[0].FirstName)
	assert.Equal(t, "Mustermann", cands[0].LastName)
	assert.Equal(t, "Geschäftsführer", cands[0].Role)
}

func TestStructuredDataMalformedBlockSkipped(t *testing.T) {
	html := `<script type="application/ld+json">{not json}</script>
	<script type="application/ld+json">{"@type":"Organization","email":"info@firma.de"}</script>`
	page := impressumPage(html, "")
	cands, err := (&StructuredDataExtractor{}).Extract(page)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "info@firma.de", cands[0].Normalized)
}

func TestSocialLinks(t *testing.T) {
	html := `<a href="https://www.linkedin.com/company/mueller-gmbh/">LinkedIn</a>
	<a href="https://www.facebook.com/sharer/sharer.php?u=x">Share</a>
	<a href="https://www.xing.com/pages/muellergmbh">Xing</a>`
	links := SocialLinks(html)
	assert.Equal(t, "https://www.linkedin.com/company/mueller-gmbh", links["linkedin"])
	assert.Equal(t, "https://www.xing.com/pages/muellergmbh", links["xing"])
	_, hasFacebook := links["facebook"]
	assert.False(t, hasFacebook, "share widgets are not profiles")
}

func TestRunAllCombines(t *testing.T) {
	page := impressumPage(
		`<a href="mailto:info@firma.de">Mail</a>`,
		"Müller GmbH\nGeschäftsführer: Max Mustermann\nHauptstraße 5\n10115 Berlin\nTelefon: 030 1234567")
	cands := RunAll(Registry(true), page)

	fields := map[model.FieldType]bool{}
	for _, c := range cands {
		fields[c.Field] = true
	}
	assert.True(t, fields[model.FieldEmail])
	assert.True(t, fields[model.FieldPhone])
	assert.True(t, fields[model.FieldPerson])
	assert.True(t, fields[model.FieldAddress])
	assert.True(t, fields[model.FieldCompanyName])
}
