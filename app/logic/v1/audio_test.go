package v1

import (
	"context"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobilien/mobi-agent/pkg/ai"
	"github.com/mobilien/mobi-agent/pkg/errors"
)

type stubTranscribeDriver struct {
	text     string
	err      error
	filename string
	audio    []byte
}

func (d *stubTranscribeDriver) Name() string { return "stub-whisper" }

func (d *stubTranscribeDriver) Transcribe(_ context.Context, audio io.Reader, filename string) (string, error) {
	d.filename = filename
	d.audio, _ = io.ReadAll(audio)
	if d.err != nil {
		return "", d.err
	}
	return d.text, nil
}

func newTestAudioLogic(transcribe ai.TranscribeDriver, chat *ChatLogic) *AudioChatLogic {
	return &AudioChatLogic{
		ctx:        context.Background(),
		transcribe: transcribe,
		chat:       chat,
	}
}

func TestSendAudioRelaysTranscript(t *testing.T) {
	messages := &fakeMessageStore{}
	chatDriver := &stubChatDriver{result: ai.GenerateResult{Reply: "A Mobiliti hálózaton."}}
	transcribe := &stubTranscribeDriver{text: "Hol tudok tölteni?"}

	logic := newTestAudioLogic(transcribe, newTestChatLogic(chatDriver, newFakeSessionStore(), messages, &fakeContextStore{}))
	result, err := logic.SendAudio(AudioChatArgs{
		AudioData:   base64.StdEncoding.EncodeToString([]byte("voice-bytes")),
		AudioFormat: "webm",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hol tudok tölteni?", result.TranscribedText)
	assert.Equal(t, "A Mobiliti hálózaton.", result.Reply)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "audio.webm", transcribe.filename)
	assert.Equal(t, []byte("voice-bytes"), transcribe.audio)

	// the persisted user turn is the transcript, not the audio payload
	rows := waitForMessages(t, messages, 1)
	assert.Equal(t, "Hol tudok tölteni?", rows[0].Content)
}

func TestSendAudioMissingPayload(t *testing.T) {
	logic := newTestAudioLogic(&stubTranscribeDriver{}, newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendAudio(AudioChatArgs{AudioFormat: "webm"})
	require.Error(t, err)
	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 400, ce.GetCode())
}

func TestSendAudioInvalidBase64(t *testing.T) {
	logic := newTestAudioLogic(&stubTranscribeDriver{}, newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendAudio(AudioChatArgs{AudioData: "not base64!!", AudioFormat: "webm"})
	require.Error(t, err)
	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 400, ce.GetCode())
}

func TestSendAudioNotConfigured(t *testing.T) {
	logic := newTestAudioLogic(nil, newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendAudio(AudioChatArgs{
		AudioData:   base64.StdEncoding.EncodeToString([]byte("x")),
		AudioFormat: "webm",
	})
	require.Error(t, err)
	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 500, ce.GetCode())
}

func TestSendAudioEmptyTranscript(t *testing.T) {
	transcribe := &stubTranscribeDriver{text: "   "}
	logic := newTestAudioLogic(transcribe, newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendAudio(AudioChatArgs{
		AudioData:   base64.StdEncoding.EncodeToString([]byte("x")),
		AudioFormat: "webm",
	})
	require.Error(t, err)
	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 500, ce.GetCode())
}

func TestSendAudioUpstreamFailure(t *testing.T) {
	transcribe := &stubTranscribeDriver{err: &ai.ProviderError{Driver: "stub-whisper", Kind: ai.ErrKindUpstream, StatusCode: 502, Body: "bad gateway"}}
	logic := newTestAudioLogic(transcribe, newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendAudio(AudioChatArgs{
		AudioData:   base64.StdEncoding.EncodeToString([]byte("x")),
		AudioFormat: "webm",
	})
	require.Error(t, err)
	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 502, ce.GetCode())
}
