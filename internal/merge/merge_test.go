package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/model"
)

func newMerger() *Merger {
	return New(config.MergeConfig{ScanKontakt: true})
}

func TestMerge_Empty(t *testing.T) {
	rec := newMerger().Merge("https://firma.de", "firma.de", "", nil)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Email)
	assert.Nil(t, rec.Phone)
	assert.Nil(t, rec.FirstName)
	assert.Zero(t, rec.Confidence)
}

func TestMerge_MethodPrecedence(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldEmail, Value: "regex@firma.de", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.95},
		{Type: model.FieldEmail, Value: "mailto@firma.de", Method: model.MethodDirectLink,
			Source: model.PageImpressum, Confidence: 0.85},
		{Type: model.FieldEmail, Value: "ld@firma.de", Method: model.MethodStructuredData,
			Source: model.PageImpressum, Confidence: 0.8},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "ld@firma.de", *rec.Email)
}

func TestMerge_LLMBeatsRegex(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldCompanyName, Value: "Firma", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.9},
		{Type: model.FieldCompanyName, Value: "Firma GmbH", Method: model.MethodLLM,
			Source: model.PageImpressum, Confidence: 0.8},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	require.NotNil(t, rec.Company)
	assert.Equal(t, "Firma GmbH", *rec.Company)
}

func TestMerge_FaxExcludedFromPhoneSlot(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldPhone, Value: "+4930111111", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.95, Flags: []string{"fax"}},
		{Type: model.FieldPhone, Value: "+4930222222", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.8},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "+4930222222", *rec.Phone)
}

func TestMerge_OnlyFaxMeansNoPhone(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldPhone, Value: "+4930111111", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.95, Flags: []string{"fax"}},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	assert.Nil(t, rec.Phone)
}

func TestMerge_HomepageNeverOverridesImpressum(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldEmail, Value: "footer@firma.de", Method: model.MethodDirectLink,
			Source: model.PageHomepage, Confidence: 0.99},
		{Type: model.FieldEmail, Value: "impressum@firma.de", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.7},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "impressum@firma.de", *rec.Email)
}

func TestMerge_HomepageFillsEmptySlot(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldEmail, Value: "footer@firma.de", Method: model.MethodDirectLink,
			Source: model.PageHomepage, Confidence: 0.8},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "footer@firma.de", *rec.Email)
}

func TestMerge_DedupKeepsMostTrusted(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldPhone, Value: "+49 30 123456", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.8},
		{Type: model.FieldPhone, Value: "+4930123456", Method: model.MethodDirectLink,
			Source: model.PageImpressum, Confidence: 0.9},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	require.Len(t, rec.Entities, 1)
	assert.Equal(t, model.MethodDirectLink, rec.Entities[0].Method)
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "+4930123456", *rec.Phone)
}

func TestMerge_PersonAndAddressComponents(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldPerson, Value: "Thomas Müller", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.9,
			StructuredData: map[string]string{
				"first_name": "Thomas", "last_name": "Müller", "position": "Geschäftsführer",
			}},
		{Type: model.FieldAddress, Value: "Industriestraße 12, 70565 Stuttgart",
			Method: model.MethodRegex, Source: model.PageImpressum, Confidence: 0.8,
			StructuredData: map[string]string{
				"street": "Industriestraße 12", "zip_code": "70565", "city": "Stuttgart", "country": "DE",
			}},
	}

	rec := newMerger().Merge("https://firma.de", "firma.de", "https://firma.de/impressum", entities)
	require.NotNil(t, rec.FirstName)
	assert.Equal(t, "Thomas", *rec.FirstName)
	assert.Equal(t, "Müller", *rec.LastName)
	assert.Equal(t, "Geschäftsführer", *rec.Position)
	assert.Equal(t, "Industriestraße 12", *rec.Street)
	assert.Equal(t, "70565", *rec.ZipCode)
	assert.Equal(t, "Stuttgart", *rec.City)
	assert.Equal(t, "DE", *rec.Country)
	assert.Equal(t, "https://firma.de/impressum", rec.ImpressumURL)
}

func TestMerge_KontaktSuppressedWhenScanOff(t *testing.T) {
	m := New(config.MergeConfig{ScanKontakt: false})
	entities := []model.Entity{
		{Type: model.FieldEmail, Value: "impressum@firma.de", Method: model.MethodRegex,
			Source: model.PageImpressum, Confidence: 0.7},
		{Type: model.FieldEmail, Value: "kontakt@firma.de", Method: model.MethodDirectLink,
			Source: model.PageKontakt, Confidence: 0.95},
		{Type: model.FieldPhone, Value: "+4930123456", Method: model.MethodRegex,
			Source: model.PageKontakt, Confidence: 0.9},
	}

	rec := m.Merge("https://firma.de", "firma.de", "", entities)
	// email covered by impressum, so the kontakt email is dropped
	require.NotNil(t, rec.Email)
	assert.Equal(t, "impressum@firma.de", *rec.Email)
	// phone only exists on the kontakt page and survives
	require.NotNil(t, rec.Phone)
	assert.Equal(t, "+4930123456", *rec.Phone)
}

func TestMerge_ConfidenceAggregated(t *testing.T) {
	entities := []model.Entity{
		{Type: model.FieldEmail, Value: "info@firma.de", Method: model.MethodDirectLink,
			Source: model.PageImpressum, Confidence: 1.0},
	}
	rec := newMerger().Merge("https://firma.de", "firma.de", "", entities)
	// 1.0*1.5 / 5.3: a lone email is far from a complete record.
	assert.InDelta(t, 0.283, rec.Confidence, 0.001)
}
