package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/resilience"
	"github.com/leadpilot/impressum-cli/pkg/anthropic"
)

const sampleExtraction = `{
	"emails": [{"value": "info@mueller-metallbau.de", "confidence": 0.95}],
	"phones": [{"value": "+497111234567", "confidence": 0.9}],
	"persons": [{"first_name": "Thomas", "last_name": "Müller", "position": "Geschäftsführer", "confidence": 0.95}],
	"company_name": "Müller Metallbau GmbH",
	"address": {"street": "Industriestraße 12", "zip_code": "70565", "city": "Stuttgart", "country": "DE"},
	"trade_register": "HRB 72451, Amtsgericht Stuttgart",
	"vat_id": "DE214365897",
	"confidence": 0.95
}`

func TestParseExtraction_CleanJSON(t *testing.T) {
	ex, err := ParseExtraction(sampleExtraction)
	require.NoError(t, err)
	require.Len(t, ex.Emails, 1)
	assert.Equal(t, "info@mueller-metallbau.de", ex.Emails[0].Value)
	assert.InDelta(t, 0.95, ex.Emails[0].Confidence, 0.001)
	require.Len(t, ex.Persons, 1)
	assert.Equal(t, "Müller", ex.Persons[0].LastName)
	require.NotNil(t, ex.Address)
	assert.Equal(t, "70565", ex.Address.ZipCode)
	assert.Equal(t, "DE214365897", ex.VATID)
}

func TestParseExtraction_CodeFence(t *testing.T) {
	ex, err := ParseExtraction("```json\n" + sampleExtraction + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Müller Metallbau GmbH", ex.CompanyName)
}

func TestParseExtraction_ProsePrefix(t *testing.T) {
	raw := "Hier ist das Ergebnis:\n\n" + sampleExtraction + "\n\nWeitere Fragen?"
	ex, err := ParseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "+497111234567", ex.Phones[0].Value)
}

func TestParseExtraction_TrailingCommaRepaired(t *testing.T) {
	raw := `{"emails": [{"value": "a@b.de", "confidence": 0.8},], "company_name": "Test GmbH",}`
	ex, err := ParseExtraction(raw)
	require.NoError(t, err)
	require.Len(t, ex.Emails, 1)
	assert.Equal(t, "Test GmbH", ex.CompanyName)
}

func TestParseExtraction_NoJSON(t *testing.T) {
	_, err := ParseExtraction("Ich konnte keine Kontaktdaten finden.")
	require.Error(t, err)
}

func TestParseExtraction_EmptyObject(t *testing.T) {
	ex, err := ParseExtraction("{}")
	require.NoError(t, err)
	assert.Empty(t, ex.Emails)
	assert.Nil(t, ex.Address)
	assert.Zero(t, ex.Confidence)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "bard"})
	require.Error(t, err)
}

func TestNew_NoneProvider(t *testing.T) {
	p, err := New(config.LLMConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, p)
}

// stubAnthropicClient returns a fixed response.
type stubAnthropicClient struct {
	resp *anthropic.MessageResponse
	err  error
	seen anthropic.MessageRequest
}

func (s *stubAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.seen = req
	return s.resp, s.err
}

func TestAnthropicProvider_Extract(t *testing.T) {
	stub := &stubAnthropicClient{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: sampleExtraction}},
		},
	}
	p := &anthropicProvider{client: stub, model: "claude-haiku-4-5-20251001", maxInputChars: 8000}

	ex, err := p.Extract(context.Background(), "Impressum\nMüller Metallbau GmbH")
	require.NoError(t, err)
	assert.Equal(t, "Müller Metallbau GmbH", ex.CompanyName)

	require.Len(t, stub.seen.System, 1)
	assert.NotNil(t, stub.seen.System[0].CacheControl)
	require.Len(t, stub.seen.Messages, 1)
	assert.Contains(t, stub.seen.Messages[0].Content, "Müller Metallbau GmbH")
}

func TestAnthropicProvider_ExtractError(t *testing.T) {
	stub := &stubAnthropicClient{err: eris.New("api down")}
	p := &anthropicProvider{client: stub, model: "claude-haiku-4-5-20251001", maxInputChars: 8000}

	_, err := p.Extract(context.Background(), "text")
	require.Error(t, err)
}

func TestOpenAIProvider_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` +
			`"{\"emails\":[{\"value\":\"info@test.de\",\"confidence\":0.9}],\"confidence\":0.9}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{
		OpenAIBaseURL: srv.URL,
		OpenAIKey:     "sk-test",
		OpenAIModel:   "gpt-4o-mini",
		MaxInputChars: 8000,
		TimeoutSecs:   5,
	})

	ex, err := p.Extract(context.Background(), "Impressum")
	require.NoError(t, err)
	require.Len(t, ex.Emails, 1)
	assert.Equal(t, "info@test.de", ex.Emails[0].Value)
}

func TestOpenAIProvider_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{OpenAIBaseURL: srv.URL, TimeoutSecs: 5})

	_, err := p.Extract(context.Background(), "Impressum")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestOllamaProvider_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":` +
			`"{\"phones\":[{\"value\":\"+4930123456\",\"confidence\":0.8}],\"confidence\":0.8}"}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(config.LLMConfig{
		OllamaBaseURL: srv.URL,
		OllamaModel:   "llama3.1",
		MaxInputChars: 8000,
		TimeoutSecs:   5,
	})

	ex, err := p.Extract(context.Background(), "Kontakt")
	require.NoError(t, err)
	require.Len(t, ex.Phones, 1)
	assert.Equal(t, "+4930123456", ex.Phones[0].Value)
}

// countingProvider fails n times before succeeding.
type countingProvider struct {
	calls     atomic.Int32
	failures  int32
	err       error
	extracted *Extraction
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Extract(_ context.Context, _ string) (*Extraction, error) {
	n := c.calls.Add(1)
	if n <= c.failures {
		return nil, c.err
	}
	return c.extracted, nil
}

func TestResilientProvider_RetriesTransient(t *testing.T) {
	inner := &countingProvider{
		failures:  1,
		err:       resilience.NewTransientError(eris.New("overloaded"), 529),
		extracted: &Extraction{Confidence: 0.7},
	}
	p := newResilientProvider(inner)
	p.retry.InitialBackoff = 1 // keep the test fast

	ex, err := p.Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, ex.Confidence, 0.001)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestResilientProvider_NoRetryOnParseError(t *testing.T) {
	inner := &countingProvider{
		failures: 10,
		err:      eris.New("llm: response contains no JSON object"),
	}
	p := newResilientProvider(inner)
	p.retry.InitialBackoff = 1

	_, err := p.Extract(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}
