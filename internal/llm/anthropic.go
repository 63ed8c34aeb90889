package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/textnorm"
	"github.com/leadpilot/impressum-cli/pkg/anthropic"
)

const anthropicMaxTokens = 2048

// anthropicProvider extracts via the Anthropic Messages API. The system
// prompt is identical for every page, so it carries a cache breakpoint.
type anthropicProvider struct {
	client        anthropic.Client
	model         string
	maxInputChars int
}

// NewAnthropicProvider builds a provider from config.
func NewAnthropicProvider(cfg config.LLMConfig) Provider {
	return &anthropicProvider{
		client:        anthropic.NewClient(cfg.AnthropicKey),
		model:         cfg.AnthropicModel,
		maxInputChars: cfg.MaxInputChars,
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Extract(ctx context.Context, pageText string) (*Extraction, error) {
	text := textnorm.TruncateForLLM(pageText, p.maxInputChars)
	temp := 0.0

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.model,
		MaxTokens:   anthropicMaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(SystemPrompt()),
		Messages:    []anthropic.Message{{Role: "user", Content: UserPrompt(text)}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: anthropic extract")
	}
	resp.Usage.LogCost(p.model, "extract")

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return ParseExtraction(sb.String())
}
