package ai

import (
	"context"
	"errors"
	"net/url"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyErrorTimeout(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://api.mistral.ai", Err: context.DeadlineExceeded}

	pe := ClassifyError("mistral", err)

	assert.Equal(t, ErrKindTimeout, pe.Kind)
	assert.Equal(t, "mistral", pe.Driver)
}

func TestClassifyErrorUpstream(t *testing.T) {
	err := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}

	pe := ClassifyError("openrouter", err)

	assert.Equal(t, ErrKindUpstream, pe.Kind)
	assert.Equal(t, 429, pe.StatusCode)
	assert.Contains(t, pe.Error(), "rate limited")
}

func TestClassifyErrorNetwork(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://api.mistral.ai", Err: errors.New("connection refused")}

	pe := ClassifyError("mistral", err)

	assert.Equal(t, ErrKindNetwork, pe.Kind)
}

func TestAsProviderError(t *testing.T) {
	pe := ClassifyError("openrouter", &openai.APIError{HTTPStatusCode: 502, Message: "bad gateway"})

	got, ok := AsProviderError(error(pe))
	require.True(t, ok)
	assert.Equal(t, 502, got.StatusCode)

	_, ok = AsProviderError(errors.New("plain"))
	assert.False(t, ok)
}
