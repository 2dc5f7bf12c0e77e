package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mdlabs/atlas-api/internal/domain/classifier"
	"github.com/mdlabs/atlas-api/internal/infra/ai/prompt"
)

const (
	defaultModel    = "claude-sonnet-4-20250514"
	matchMaxTokens  = 1500
	reportMaxTokens = 2000
)

// Client adapter classifier berbasis Anthropic Messages API.
type Client struct {
	client anthropic.Client
	model  string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// MatchDiagram kirim narasi + daftar diagram kandidat, balikin teks mentah.
func (c *Client) MatchDiagram(ctx context.Context, text, diagramList string) (string, classifier.Usage, error) {
	return c.complete(ctx,
		prompt.GetMatcherSystemPrompt(diagramList),
		prompt.GetMatcherUserPrompt(text),
		matchMaxTokens,
	)
}

// GenerateReport mode "report": teks opini dari analisis yang sudah dihitung.
func (c *Client) GenerateReport(ctx context.Context, in classifier.ReportInput) (string, classifier.Usage, error) {
	return c.complete(ctx,
		prompt.GetReportSystemPrompt(),
		prompt.GetReportUserPrompt(in),
		reportMaxTokens,
	)
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int64) (string, classifier.Usage, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) && apierr.StatusCode == 429 {
			return "", classifier.Usage{}, classifier.ErrQuotaExceeded
		}
		return "", classifier.Usage{}, fmt.Errorf("anthropic message error: %w", err)
	}

	u := classifier.Usage{
		Model:        c.model,
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, u, nil
		}
	}
	return "", u, fmt.Errorf("no text content in anthropic response")
}
