package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/resilience"
	"github.com/leadpilot/impressum-cli/internal/textnorm"
)

// openaiProvider extracts via the OpenAI chat completions API. The base
// URL is configurable so OpenAI-compatible gateways (and test servers)
// work too.
type openaiProvider struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	model         string
	maxInputChars int
}

// NewOpenAIProvider builds a provider from config.
func NewOpenAIProvider(cfg config.LLMConfig) Provider {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &openaiProvider{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		apiKey:        cfg.OpenAIKey,
		model:         cfg.OpenAIModel,
		maxInputChars: cfg.MaxInputChars,
	}
}

func (p *openaiProvider) Name() string { return "openai" }

type openaiRequest struct {
	Model          string          `json:"model"`
	Messages       []openaiMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *openaiFormat   `json:"response_format,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiFormat struct {
	Type string `json:"type"`
}

type openaiResponse struct {
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *openaiProvider) Extract(ctx context.Context, pageText string) (*Extraction, error) {
	text := textnorm.TruncateForLLM(pageText, p.maxInputChars)

	body, err := json.Marshal(openaiRequest{
		Model: p.model,
		Messages: []openaiMessage{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: UserPrompt(text)},
		},
		Temperature:    0,
		ResponseFormat: &openaiFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: marshal openai request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "llm: build openai request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "llm: openai request"), 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "llm: read openai response"), resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.New(fmt.Sprintf("llm: openai status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var out openaiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, eris.Wrap(err, "llm: decode openai response")
	}
	if out.Error != nil {
		return nil, eris.New("llm: openai error: " + out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, eris.New("llm: openai response has no choices")
	}
	return ParseExtraction(out.Choices[0].Message.Content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
