package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type GenerateResult struct {
	Reply      string
	TokensUsed int64
	Model      string
}

// ChatDriver is one upstream chat-completion provider. Drivers perform a
// single request, no retries; retry policy belongs to the caller.
type ChatDriver interface {
	Name() string
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (GenerateResult, error)
}

// TranscribeDriver converts recorded audio into plain text.
type TranscribeDriver interface {
	Name() string
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type ErrKind string

const (
	ErrKindUpstream ErrKind = "upstream" // provider answered with non-2xx
	ErrKindTimeout  ErrKind = "timeout"  // client-side deadline exceeded
	ErrKindNetwork  ErrKind = "network"  // no response received
)

// ProviderError carries the failure class of an upstream call so the
// orchestrator can map it onto an HTTP status without inspecting
// provider-specific error types.
type ProviderError struct {
	Driver     string
	Kind       ErrKind
	StatusCode int
	Body       string
	cause      error
}

func (e *ProviderError) Error() string {
	if e.Kind == ErrKindUpstream {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Driver, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %s: %v", e.Driver, e.Kind, e.cause)
}

func (e *ProviderError) Unwrap() error {
	return e.cause
}

func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}

// ClassifyError folds a go-openai client error into the three failure
// classes. Deadline expiry wins over everything else because an aborted
// request often surfaces as a wrapped url.Error.
func ClassifyError(driver string, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Driver: driver, Kind: ErrKindTimeout, cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ProviderError{Driver: driver, Kind: ErrKindTimeout, cause: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Driver:     driver,
			Kind:       ErrKindUpstream,
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
			cause:      err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{
			Driver:     driver,
			Kind:       ErrKindUpstream,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
			cause:      err,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ProviderError{Driver: driver, Kind: ErrKindNetwork, cause: err}
	}

	return &ProviderError{Driver: driver, Kind: ErrKindNetwork, cause: err}
}
