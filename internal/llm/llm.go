// Package llm adapts chat-completion model providers to one extraction
// interface. Providers receive prepared page text and return structured
// contact data with self-reported confidences; everything else about the
// model (auth, transport, retry) stays behind the Provider interface.
package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/resilience"
)

// ValueConf is an extracted value with the model's confidence.
type ValueConf struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// PersonResult is an extracted person.
type PersonResult struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Position   string  `json:"position"`
	Confidence float64 `json:"confidence"`
}

// AddressResult is an extracted postal address.
type AddressResult struct {
	Street  string `json:"street"`
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Extraction is the structured output of one model call.
type Extraction struct {
	Emails        []ValueConf    `json:"emails"`
	Phones        []ValueConf    `json:"phones"`
	Persons       []PersonResult `json:"persons"`
	CompanyName   string         `json:"company_name"`
	Address       *AddressResult `json:"address"`
	TradeRegister string         `json:"trade_register"`
	VATID         string         `json:"vat_id"`
	Confidence    float64        `json:"confidence"`
}

// Provider extracts contact data from page text. Implementations must be
// safe for concurrent use.
type Provider interface {
	Extract(ctx context.Context, pageText string) (*Extraction, error)
	Name() string
}

// New builds the configured provider, wrapped with retry and a circuit
// breaker. Provider "none" returns nil: the pipeline then runs rule-based
// extraction only.
func New(cfg config.LLMConfig) (Provider, error) {
	var p Provider
	switch cfg.Provider {
	case "anthropic":
		p = NewAnthropicProvider(cfg)
	case "openai":
		p = NewOpenAIProvider(cfg)
	case "ollama":
		p = NewOllamaProvider(cfg)
	case "none", "":
		return nil, nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	return newResilientProvider(p), nil
}

// resilientProvider retries transient transport failures and trips a
// circuit breaker after repeated ones. Parse failures are permanent and
// pass straight through; re-asking the model costs money and rarely
// changes the answer.
type resilientProvider struct {
	inner   Provider
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

func newResilientProvider(inner Provider) *resilientProvider {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("llm", inner.Name())
	return &resilientProvider{
		inner: inner,
		retry: retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			ShouldTrip: resilience.IsTransient,
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("llm: circuit state change",
					zap.String("provider", inner.Name()),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

func (r *resilientProvider) Name() string { return r.inner.Name() }

func (r *resilientProvider) Extract(ctx context.Context, pageText string) (*Extraction, error) {
	return resilience.ExecuteVal(ctx, r.breaker, func(ctx context.Context) (*Extraction, error) {
		return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*Extraction, error) {
			return r.inner.Extract(ctx, pageText)
		})
	})
}
