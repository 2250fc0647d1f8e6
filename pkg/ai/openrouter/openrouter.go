package openrouter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mobilien/mobi-agent/pkg/ai"
)

const (
	NAME = "openrouter"

	DEFAULT_BASE_URL = "https://openrouter.ai/api/v1"
	DEFAULT_MODEL    = "openai/gpt-4o-mini"
)

type Driver struct {
	client *openai.Client
	model  string
}

// attributionTransport adds the app attribution headers OpenRouter uses
// for ranking and abuse reporting.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", t.referer)
	req.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(req)
}

func New(token, baseURL, model, referer, title string) *Driver {
	cfg := openai.DefaultConfig(token)
	cfg.BaseURL = lo.Ternary(baseURL != "", baseURL, DEFAULT_BASE_URL)
	cfg.HTTPClient = &http.Client{
		Transport: &attributionTransport{
			base:    http.DefaultTransport,
			referer: lo.Ternary(referer != "", referer, "https://mobilien.app"),
			title:   lo.Ternary(title != "", title, "Mobilien AI Agent"),
		},
	}

	if model == "" {
		model = DEFAULT_MODEL
	}

	return &Driver{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (s *Driver) Name() string {
	return NAME
}

func (s *Driver) Generate(ctx context.Context, messages []ai.Message, opts ai.GenerateOptions) (ai.GenerateResult, error) {
	model := opts.Model
	if model == "" {
		model = s.model
	}

	slog.Debug("Generate", slog.String("driver", NAME), slog.String("model", model))

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: lo.Map(messages, func(item ai.Message, _ int) openai.ChatCompletionMessage {
			return openai.ChatCompletionMessage{
				Role:    item.Role,
				Content: item.Content,
			}
		}),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var result ai.GenerateResult
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return result, ai.ClassifyError(NAME, err)
	}

	if len(resp.Choices) > 0 {
		result.Reply = resp.Choices[0].Message.Content
	}
	result.TokensUsed = int64(resp.Usage.TotalTokens)
	result.Model = resp.Model

	return result, nil
}
