// Package merge collapses scored entities from all pages of a domain
// into one ContactRecord. Per slot the winner is chosen by extraction
// method precedence, then confidence; homepage findings only fill slots
// the dedicated pages left empty.
package merge

import (
	"sort"
	"strings"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/score"
)

// methodRank orders extraction methods by trust. Structured data is
// machine-readable and beats everything; mailto/tel links beat model
// output, which beats pattern matching.
var methodRank = map[model.ExtractionMethod]int{
	model.MethodStructuredData: 4,
	model.MethodDirectLink:     3,
	model.MethodLLM:            2,
	model.MethodRegex:          1,
	model.MethodDeobfuscation:  1,
	model.MethodJavascript:     1,
}

// Merger builds ContactRecords from entities.
type Merger struct {
	scanKontakt bool
}

// New builds a Merger from config.
func New(cfg config.MergeConfig) *Merger {
	return &Merger{scanKontakt: cfg.ScanKontakt}
}

// Merge builds the per-domain record. url is the input URL the job was
// asked about; impressumURL is the impressum page that was actually
// processed, empty when none was found. Missing fields stay nil.
func (m *Merger) Merge(url, domain, impressumURL string, entities []model.Entity) *model.ContactRecord {
	entities = m.filter(entities)
	entities = dedup(entities)

	rec := &model.ContactRecord{
		URL:          url,
		Domain:       domain,
		ImpressumURL: impressumURL,
		Entities:     entities,
		Confidence:   score.Overall(entities),
	}

	if e := pickBest(entities, model.FieldEmail, nil); e != nil {
		rec.Email = &e.Value
	}
	if e := pickBest(entities, model.FieldPhone, notFax); e != nil {
		rec.Phone = &e.Value
	}
	if e := pickBest(entities, model.FieldPerson, nil); e != nil {
		if v := e.StructuredData["first_name"]; v != "" {
			rec.FirstName = strptr(v)
		}
		if v := e.StructuredData["last_name"]; v != "" {
			rec.LastName = strptr(v)
		}
		if v := e.StructuredData["position"]; v != "" {
			rec.Position = strptr(v)
		}
	}
	if e := pickBest(entities, model.FieldCompanyName, nil); e != nil {
		rec.Company = &e.Value
	}
	if e := pickBest(entities, model.FieldAddress, nil); e != nil {
		if v := e.StructuredData["street"]; v != "" {
			rec.Street = strptr(v)
		}
		if v := e.StructuredData["zip_code"]; v != "" {
			rec.ZipCode = strptr(v)
		}
		if v := e.StructuredData["city"]; v != "" {
			rec.City = strptr(v)
		}
		if v := e.StructuredData["country"]; v != "" {
			rec.Country = strptr(v)
		}
	}
	if e := pickBest(entities, model.FieldTradeRegister, nil); e != nil {
		rec.TradeRegister = &e.Value
	}
	if e := pickBest(entities, model.FieldVATID, nil); e != nil {
		rec.VATID = &e.Value
	}

	return rec
}

// filter applies the kontakt-page policy: with the supplement scan off,
// kontakt entities survive only for field types no other dedicated page
// produced.
func (m *Merger) filter(entities []model.Entity) []model.Entity {
	if m.scanKontakt {
		return entities
	}
	covered := map[model.FieldType]bool{}
	for _, e := range entities {
		if e.Source != model.PageKontakt && e.Source != model.PageHomepage {
			covered[e.Type] = true
		}
	}
	out := entities[:0]
	for _, e := range entities {
		if e.Source == model.PageKontakt && covered[e.Type] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// dedup collapses entities that refer to the same value, keeping the
// most trusted occurrence.
func dedup(entities []model.Entity) []model.Entity {
	best := map[string]model.Entity{}
	order := []string{}
	for _, e := range entities {
		key := dedupKey(e)
		prev, seen := best[key]
		if !seen {
			best[key] = e
			order = append(order, key)
			continue
		}
		if better(e, prev) {
			best[key] = e
		}
	}
	out := make([]model.Entity, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func dedupKey(e model.Entity) string {
	switch e.Type {
	case model.FieldPhone:
		var digits strings.Builder
		for _, r := range e.Value {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		return string(e.Type) + ":" + digits.String()
	default:
		return string(e.Type) + ":" + strings.ToLower(strings.TrimSpace(e.Value))
	}
}

// better reports whether a should replace b for the same value.
func better(a, b model.Entity) bool {
	if homepageOnly(a) != homepageOnly(b) {
		return homepageOnly(b)
	}
	if methodRank[a.Method] != methodRank[b.Method] {
		return methodRank[a.Method] > methodRank[b.Method]
	}
	return a.Confidence > b.Confidence
}

func homepageOnly(e model.Entity) bool {
	return e.Source == model.PageHomepage || e.Source == model.PageFooter
}

// pickBest selects the winning entity of one type, or nil. Dedicated
// pages always beat the homepage; within a tier the method rank decides,
// then confidence, then page priority.
func pickBest(entities []model.Entity, typ model.FieldType, accept func(model.Entity) bool) *model.Entity {
	var pool []model.Entity
	for _, e := range entities {
		if e.Type != typ {
			continue
		}
		if accept != nil && !accept(e) {
			continue
		}
		pool = append(pool, e)
	}
	if len(pool) == 0 {
		return nil
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if homepageOnly(a) != homepageOnly(b) {
			return homepageOnly(b)
		}
		if methodRank[a.Method] != methodRank[b.Method] {
			return methodRank[a.Method] > methodRank[b.Method]
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return model.PageRank(a.Source) < model.PageRank(b.Source)
	})
	return &pool[0]
}

func notFax(e model.Entity) bool {
	for _, f := range e.Flags {
		if f == "fax" {
			return false
		}
	}
	return true
}

func strptr(s string) *string { return &s }
