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

// ollamaProvider extracts via a local Ollama server. No API key; the
// format hint forces JSON output from models that would otherwise chat.
type ollamaProvider struct {
	httpClient    *http.Client
	baseURL       string
	model         string
	maxInputChars int
}

// NewOllamaProvider builds a provider from config.
func NewOllamaProvider(cfg config.LLMConfig) Provider {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ollamaProvider{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimSuffix(cfg.OllamaBaseURL, "/"),
		model:         cfg.OllamaModel,
		maxInputChars: cfg.MaxInputChars,
	}
}

func (p *ollamaProvider) Name() string { return "ollama" }

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error"`
}

func (p *ollamaProvider) Extract(ctx context.Context, pageText string) (*Extraction, error) {
	text := textnorm.TruncateForLLM(pageText, p.maxInputChars)

	body, err := json.Marshal(ollamaRequest{
		Model: p.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: UserPrompt(text)},
		},
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: 0},
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: marshal ollama request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "llm: build ollama request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "llm: ollama request"), 0)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "llm: read ollama response"), resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.New(fmt.Sprintf("llm: ollama status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var out ollamaResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, eris.Wrap(err, "llm: decode ollama response")
	}
	if out.Error != "" {
		return nil, eris.New("llm: ollama error: " + out.Error)
	}
	return ParseExtraction(out.Message.Content)
}
