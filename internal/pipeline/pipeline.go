// Package pipeline orchestrates per-URL contact extraction: discover
// the relevant pages, fetch them, run the extractors, optionally ask a
// model, then merge and score into one record per domain.
package pipeline

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/discover"
	"github.com/leadpilot/impressum-cli/internal/extract"
	"github.com/leadpilot/impressum-cli/internal/fetch"
	"github.com/leadpilot/impressum-cli/internal/llm"
	"github.com/leadpilot/impressum-cli/internal/merge"
	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/score"
	"github.com/leadpilot/impressum-cli/internal/store"
)

// llmFailureCap bounds a record's confidence when fallback extraction
// needed the model but the model call failed.
const llmFailureCap = 0.3

// Deps are the pipeline's injectable collaborators. Provider and Store
// may be nil: without a provider the pipeline runs rule-based extraction
// only, without a store nothing is persisted.
type Deps struct {
	Fetcher  fetch.Fetcher
	Prober   discover.Prober
	Provider llm.Provider
	Store    store.JobStore
}

// Pipeline runs extraction for single URLs and batches.
type Pipeline struct {
	cfg        *config.Config
	fetcher    fetch.Fetcher
	disc       *discover.Discoverer
	provider   llm.Provider
	merger     *merge.Merger
	scorer     *score.Scorer
	jobs       store.JobStore
	extractors []extract.Extractor

	// LLM calls are gated twice: a rate limiter for requests per second
	// and a semaphore for in-flight calls.
	llmLimiter *rate.Limiter
	llmSem     chan struct{}

	// cache holds one *model.Result per registrable domain. Write-once;
	// concurrent duplicate computation is acceptable waste.
	cache sync.Map
}

// New builds a Pipeline from config and dependencies.
func New(cfg *config.Config, deps Deps) *Pipeline {
	llmConc := cfg.Pipeline.LLMConcurrency
	if llmConc <= 0 {
		llmConc = 2
	}
	rps := cfg.LLM.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}

	return &Pipeline{
		cfg:        cfg,
		fetcher:    deps.Fetcher,
		disc:       discover.New(deps.Prober, cfg.Discover.ProbePaths),
		provider:   deps.Provider,
		merger:     merge.New(cfg.Merge),
		scorer:     score.New(cfg.Pipeline.MinConfidence),
		jobs:       deps.Store,
		extractors: extract.Registry(deps.Provider != nil),
		llmLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		llmSem:     make(chan struct{}, llmConc),
	}
}

// ScoreOne extracts the contact record for a single URL. Failures are
// reported in the Result, not as an error return.
func (p *Pipeline) ScoreOne(ctx context.Context, rawURL string) *model.Result {
	result, _ := p.processURL(ctx, rawURL)
	return result
}

// processURL runs the full per-URL sequence and returns the result plus
// every page URL that was checked along the way.
func (p *Pipeline) processURL(ctx context.Context, rawURL string) (*model.Result, []string) {
	normalized, err := fetch.NormalizeURL(rawURL)
	if err != nil {
		return failure(rawURL, eris.Wrap(err, "pipeline: normalize url")), nil
	}
	domain := fetch.Domain(normalized)

	if p.cfg.Pipeline.CacheResults {
		if cached, ok := p.cache.Load(domain); ok {
			r := *cached.(*model.Result)
			r.URL = rawURL
			zap.L().Debug("pipeline: domain cache hit", zap.String("domain", domain))
			return &r, nil
		}
	}

	result, pages := p.extractDomain(ctx, rawURL, normalized, domain)

	if p.cfg.Pipeline.CacheResults && result.Success {
		p.cache.LoadOrStore(domain, result)
	}
	return result, pages
}

func (p *Pipeline) extractDomain(ctx context.Context, rawURL, normalized, domain string) (*model.Result, []string) {
	start := time.Now()

	homepage, err := p.fetcher.Fetch(ctx, normalized)
	if err != nil {
		return failure(rawURL, err), nil
	}
	homepage.Type = model.PageHomepage
	pagesChecked := []string{normalized}

	base, _ := url.Parse(homepage.FinalURL)
	if base == nil || base.Host == "" {
		base, _ = url.Parse(normalized)
	}
	links := fetch.ParseLinks(homepage.HTML, base)

	refs, probed := p.disc.Discover(ctx, normalized, links)
	pagesChecked = append(pagesChecked, probed...)

	pages := []*model.FetchedPage{homepage}
	impressumURL := ""
	maxPages := p.cfg.Discover.MaxPagesPerDomain
	if maxPages <= 0 {
		maxPages = 2
	}
	fetched := 0
	for _, ref := range refs {
		if fetched >= maxPages {
			break
		}
		if ref.Type == model.PageHomepage || !fetch.SameRegistrableHost(normalized, ref.URL) {
			continue
		}
		if ctx.Err() != nil {
			return failure(rawURL, ctx.Err()), pagesChecked
		}
		page, err := p.fetcher.Fetch(ctx, ref.URL)
		pagesChecked = append(pagesChecked, ref.URL)
		if err != nil {
			zap.L().Debug("pipeline: sub-page fetch failed",
				zap.String("url", ref.URL), zap.Error(err))
			continue
		}
		page.Type = ref.Type
		pages = append(pages, page)
		fetched++
		if ref.Type == model.PageImpressum && impressumURL == "" {
			impressumURL = page.FinalURL
		}
	}

	var candidates []model.Candidate
	for _, page := range pages {
		candidates = append(candidates, extract.RunAll(p.extractors, page)...)
	}
	entities := p.scorer.Entities(candidates, domain)

	llmFailed := false
	if p.provider != nil && p.shouldUseLLM(entities) {
		llmEntities, err := p.llmExtract(ctx, domain, pages)
		if err != nil {
			llmFailed = true
			zap.L().Warn("pipeline: llm extraction failed",
				zap.String("domain", domain), zap.Error(err))
		} else {
			entities = append(entities, llmEntities...)
		}
	}

	record := p.merger.Merge(rawURL, domain, impressumURL, entities)
	record.SocialLinks = extract.SocialLinks(homepage.HTML)

	result := record.ToResult()
	// Fallback mode only reaches the model when rule-based extraction
	// was weak; if the model then failed too, the record cannot claim
	// more confidence than weak evidence supports.
	if llmFailed && p.cfg.LLM.Mode != "primary" && result.Confidence > llmFailureCap {
		result.Confidence = llmFailureCap
	}
	zap.L().Info("pipeline: url processed",
		zap.String("domain", domain),
		zap.Int("pages", len(pages)),
		zap.Int("entities", len(record.Entities)),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("elapsed", time.Since(start)))
	return &result, pagesChecked
}

// shouldUseLLM decides whether to spend a model call. In primary mode
// the model always runs; in fallback mode only when rule-based
// extraction left the record weak.
func (p *Pipeline) shouldUseLLM(entities []model.Entity) bool {
	if p.cfg.LLM.Mode == "primary" {
		return true
	}
	hasEmail, hasPerson := false, false
	for _, e := range entities {
		switch e.Type {
		case model.FieldEmail:
			hasEmail = true
		case model.FieldPerson:
			hasPerson = true
		}
	}
	return !hasEmail || !hasPerson || score.Overall(entities) < p.cfg.LLM.ConfidenceThreshold
}

// llmExtract runs the model on the best available page and converts its
// output to entities. Fallback-mode entities are marked IsFallback.
func (p *Pipeline) llmExtract(ctx context.Context, domain string, pages []*model.FetchedPage) ([]model.Entity, error) {
	page := bestLLMPage(pages)
	if page == nil || strings.TrimSpace(page.Text) == "" {
		return nil, eris.New("pipeline: no page text for llm")
	}

	select {
	case p.llmSem <- struct{}{}:
		defer func() { <-p.llmSem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := p.llmLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	ex, err := p.provider.Extract(ctx, page.Text)
	if err != nil {
		return nil, err
	}

	candidates := llmCandidates(ex, page, allText(pages))
	entities := p.scorer.Entities(candidates, domain)
	if p.cfg.LLM.Mode != "primary" {
		for i := range entities {
			entities[i].IsFallback = true
		}
	}
	return entities, nil
}

// bestLLMPage prefers the impressum, then kontakt, then whatever else
// was fetched.
func bestLLMPage(pages []*model.FetchedPage) *model.FetchedPage {
	var best *model.FetchedPage
	for _, page := range pages {
		if best == nil || model.PageRank(page.Type) < model.PageRank(best.Type) {
			best = page
		}
	}
	return best
}

func allText(pages []*model.FetchedPage) string {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// llmCandidates converts a model extraction into candidates. Person
// names that do not literally occur in the fetched text are dropped:
// the model must never introduce a name the pages do not contain.
func llmCandidates(ex *llm.Extraction, page *model.FetchedPage, corpus string) []model.Candidate {
	foldedCorpus := strings.ToLower(corpus)
	var out []model.Candidate

	base := model.Candidate{
		Method:    model.MethodLLM,
		Source:    page.Type,
		SourceURL: page.FinalURL,
	}

	for _, e := range ex.Emails {
		c := base
		c.Field = model.FieldEmail
		c.RawValue = e.Value
		c.Normalized = strings.ToLower(strings.TrimSpace(e.Value))
		c.Classification = extract.ClassifyEmail(c.Normalized)
		c.Confidence = e.Confidence
		out = append(out, c)
	}
	for _, ph := range ex.Phones {
		c := base
		c.Field = model.FieldPhone
		c.RawValue = ph.Value
		c.Normalized = strings.TrimSpace(ph.Value)
		c.Kind = model.PhoneMain
		c.Confidence = ph.Confidence
		out = append(out, c)
	}
	for _, person := range ex.Persons {
		first := strings.TrimSpace(person.FirstName)
		last := strings.TrimSpace(person.LastName)
		if last == "" {
			continue
		}
		if !strings.Contains(foldedCorpus, strings.ToLower(last)) {
			continue
		}
		if first != "" && !strings.Contains(foldedCorpus, strings.ToLower(first)) {
			continue
		}
		c := base
		c.Field = model.FieldPerson
		c.RawValue = strings.TrimSpace(first + " " + last)
		c.Normalized = c.RawValue
		c.FirstName = first
		c.LastName = last
		c.Role = strings.TrimSpace(person.Position)
		c.Confidence = person.Confidence
		out = append(out, c)
	}
	if name := strings.TrimSpace(ex.CompanyName); name != "" {
		c := base
		c.Field = model.FieldCompanyName
		c.RawValue = name
		c.Normalized = name
		c.Confidence = ex.Confidence
		out = append(out, c)
	}
	if addr := ex.Address; addr != nil && (addr.Street != "" || addr.City != "") {
		c := base
		c.Field = model.FieldAddress
		c.RawValue = strings.TrimSpace(strings.Join([]string{addr.Street, addr.ZipCode, addr.City}, " "))
		c.Normalized = c.RawValue
		c.Street = addr.Street
		c.ZipCode = addr.ZipCode
		c.City = addr.City
		c.Country = addr.Country
		c.Confidence = ex.Confidence
		out = append(out, c)
	}
	if tr := strings.TrimSpace(ex.TradeRegister); tr != "" {
		c := base
		c.Field = model.FieldTradeRegister
		c.RawValue = tr
		c.Normalized = tr
		c.Confidence = ex.Confidence
		out = append(out, c)
	}
	if vat := strings.TrimSpace(ex.VATID); vat != "" {
		c := base
		c.Field = model.FieldVATID
		c.RawValue = vat
		c.Normalized = strings.ToUpper(strings.ReplaceAll(vat, " ", ""))
		c.Confidence = ex.Confidence
		out = append(out, c)
	}
	return out
}

func failure(rawURL string, err error) *model.Result {
	return &model.Result{
		URL:     rawURL,
		Success: false,
		Error:   err.Error(),
	}
}
