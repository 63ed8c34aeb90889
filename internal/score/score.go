// Package score validates extraction candidates and assigns confidences.
// Scoring is additive: a base per extraction method, adjustments for
// email classification and domain match, then a source-page multiplier.
// Candidates below the floor are discarded and never become entities.
package score

import (
	"strings"

	"github.com/leadpilot/impressum-cli/internal/model"
)

// DefaultMinConfidence is the floor below which candidates are dropped.
const DefaultMinConfidence = 0.3

// methodBase maps extraction methods to their starting confidence.
// LLM candidates carry a self-reported confidence and skip this table.
var methodBase = map[model.ExtractionMethod]float64{
	model.MethodStructuredData: 0.9,
	model.MethodDirectLink:     0.9,
	model.MethodRegex:          0.8,
	model.MethodDeobfuscation:  0.7,
	model.MethodJavascript:     0.6,
}

// pageMultiplier adjusts for where the candidate was found. Impressum
// pages are legally required to name the responsible party, so hits
// there are worth more than the same hit on the homepage.
var pageMultiplier = map[model.PageType]float64{
	model.PageImpressum: 1.2,
	model.PageKontakt:   1.15,
	model.PageTeam:      1.0,
	model.PageAbout:     1.0,
	model.PageFooter:    0.95,
	model.PageHomepage:  0.9,
}

// Scorer validates candidates against a confidence floor.
type Scorer struct {
	minConfidence float64
}

// New builds a Scorer. A non-positive floor falls back to the default.
func New(minConfidence float64) *Scorer {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Scorer{minConfidence: minConfidence}
}

// ScoreCandidate computes the confidence for one candidate. companyDomain
// is the registrable domain of the site being processed and drives the
// email domain-match adjustment. Returns valid=false for candidates below
// the floor or with an empty value.
func (s *Scorer) ScoreCandidate(c model.Candidate, companyDomain string) (bool, float64, []string) {
	if strings.TrimSpace(c.Normalized) == "" && c.Field != model.FieldPerson {
		return false, 0, nil
	}

	var conf float64
	var flags []string

	if c.Method == model.MethodLLM {
		conf = c.Confidence
	} else {
		base, ok := methodBase[c.Method]
		if !ok {
			return false, 0, nil
		}
		conf = base
	}

	switch c.Field {
	case model.FieldEmail:
		conf, flags = s.adjustEmail(c, companyDomain, conf, flags)
	case model.FieldPhone:
		if c.Kind == model.PhoneFax {
			flags = append(flags, "fax")
		}
		if c.Kind == model.PhoneMobile {
			flags = append(flags, "mobile")
		}
	case model.FieldPerson:
		if c.FirstName == "" || c.LastName == "" {
			return false, 0, nil
		}
		if c.Role != "" {
			conf += 0.1
			flags = append(flags, "has_role")
		}
	}

	if mult, ok := pageMultiplier[c.Source]; ok {
		conf *= mult
	}
	if conf > 1.0 {
		conf = 1.0
	}
	if conf < 0 {
		conf = 0
	}

	if conf < s.minConfidence {
		return false, conf, flags
	}
	return true, conf, flags
}

func (s *Scorer) adjustEmail(c model.Candidate, companyDomain string, conf float64, flags []string) (float64, []string) {
	emailDomain := ""
	if at := strings.LastIndex(c.Normalized, "@"); at >= 0 {
		emailDomain = strings.ToLower(c.Normalized[at+1:])
	}

	switch c.Classification {
	case model.EmailRole:
		conf += 0.05
		flags = append(flags, "role_address")
	case model.EmailPersonal:
		conf -= 0.15
		flags = append(flags, "personal_provider")
	}

	if companyDomain != "" && emailDomain != "" && c.Classification != model.EmailPersonal {
		if emailDomain == companyDomain || strings.HasSuffix(emailDomain, "."+companyDomain) {
			conf += 0.3
			flags = append(flags, "domain_match")
		} else {
			conf -= 0.1
			flags = append(flags, "domain_mismatch")
		}
	}
	return conf, flags
}

// Entities scores all candidates and converts the valid ones. Malformed
// candidates are skipped, never aborting the batch.
func (s *Scorer) Entities(cands []model.Candidate, companyDomain string) []model.Entity {
	entities := make([]model.Entity, 0, len(cands))
	for _, c := range cands {
		valid, conf, flags := s.ScoreCandidate(c, companyDomain)
		if !valid {
			continue
		}
		entities = append(entities, toEntity(c, conf, flags))
	}
	return entities
}

func toEntity(c model.Candidate, conf float64, flags []string) model.Entity {
	e := model.Entity{
		Type:       c.Field,
		Value:      c.Normalized,
		Confidence: conf,
		Source:     c.Source,
		SourceURL:  c.SourceURL,
		Method:     c.Method,
		Flags:      flags,
	}
	switch c.Field {
	case model.FieldPerson:
		e.Value = strings.TrimSpace(c.FirstName + " " + c.LastName)
		e.StructuredData = map[string]string{
			"first_name": c.FirstName,
			"last_name":  c.LastName,
		}
		if c.Role != "" {
			e.StructuredData["position"] = c.Role
		}
	case model.FieldAddress:
		e.StructuredData = map[string]string{}
		if c.Street != "" {
			e.StructuredData["street"] = c.Street
		}
		if c.ZipCode != "" {
			e.StructuredData["zip_code"] = c.ZipCode
		}
		if c.City != "" {
			e.StructuredData["city"] = c.City
		}
		if c.Country != "" {
			e.StructuredData["country"] = c.Country
		}
	}
	return e
}

// overallWeights ranks field types by how much they matter for lead
// quality. An email is worth more than a postal address.
var overallWeights = map[model.FieldType]float64{
	model.FieldEmail:         1.5,
	model.FieldPhone:         1.2,
	model.FieldPerson:        1.0,
	model.FieldAddress:       0.8,
	model.FieldCompanyName:   0.8,
	model.FieldTradeRegister: 0.8,
	model.FieldVATID:         0.8,
}

// coreWeightMass is the combined weight of the field types a complete
// contact record carries. Overall divides by this fixed mass rather
// than the mass of the fields that happen to be present, so an absent
// field counts as zero and finding one more field can never lower the
// aggregate.
var coreWeightMass = overallWeights[model.FieldEmail] +
	overallWeights[model.FieldPhone] +
	overallWeights[model.FieldPerson] +
	overallWeights[model.FieldAddress] +
	overallWeights[model.FieldCompanyName]

// Overall computes the aggregate confidence over the best entity per
// field type, weighted and normalized against a complete record.
// Non-decreasing in completeness; an empty list yields 0.0.
func Overall(entities []model.Entity) float64 {
	best := map[model.FieldType]float64{}
	for _, e := range entities {
		if e.Confidence > best[e.Type] {
			best[e.Type] = e.Confidence
		}
	}
	if len(best) == 0 {
		return 0.0
	}

	var sum float64
	for typ, conf := range best {
		w, ok := overallWeights[typ]
		if !ok {
			w = 0.5
		}
		sum += conf * w
	}
	overall := sum / coreWeightMass
	// Registry fields sit outside the core mass and can push past 1.0.
	if overall > 1.0 {
		overall = 1.0
	}
	return overall
}
