package whisper

import (
	"context"
	"io"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mobilien/mobi-agent/pkg/ai"
)

const (
	NAME = "whisper"

	DEFAULT_LANGUAGE = "hu"
)

type Driver struct {
	client   *openai.Client
	model    string
	language string
}

func New(token, model, language string) *Driver {
	if model == "" {
		model = openai.Whisper1
	}
	if language == "" {
		language = DEFAULT_LANGUAGE
	}

	return &Driver{
		client:   openai.NewClient(token),
		model:    model,
		language: language,
	}
}

func (s *Driver) Name() string {
	return NAME
}

func (s *Driver) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	slog.Debug("Transcribe", slog.String("driver", NAME), slog.String("file", filename))

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		Reader:   audio,
		FilePath: filename,
		Language: s.language,
	})
	if err != nil {
		return "", ai.ClassifyError(NAME, err)
	}

	return strings.TrimSpace(resp.Text), nil
}
