package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mdlabs/atlas-api/internal/domain/classifier"
	"github.com/mdlabs/atlas-api/internal/infra/ai/prompt"
)

const (
	defaultModel    = "gpt-4o-mini"
	matchMaxTokens  = 1500
	reportMaxTokens = 2000
)

// Client adapter classifier alternatif via OpenAI chat completions.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) MatchDiagram(ctx context.Context, text, diagramList string) (string, classifier.Usage, error) {
	return c.complete(ctx,
		prompt.GetMatcherSystemPrompt(diagramList),
		prompt.GetMatcherUserPrompt(text),
		matchMaxTokens,
	)
}

func (c *Client) GenerateReport(ctx context.Context, in classifier.ReportInput) (string, classifier.Usage, error) {
	return c.complete(ctx,
		prompt.GetReportSystemPrompt(),
		prompt.GetReportUserPrompt(in),
		reportMaxTokens,
	)
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, classifier.Usage, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") || strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apierr *openai.APIError
		if errors.As(err, &apierr) && apierr.HTTPStatusCode == 429 {
			return "", classifier.Usage{}, classifier.ErrQuotaExceeded
		}
		return "", classifier.Usage{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", classifier.Usage{}, fmt.Errorf("no choices in openai response")
	}

	u := classifier.Usage{
		Model:        c.Model,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}
	return resp.Choices[0].Message.Content, u, nil
}
