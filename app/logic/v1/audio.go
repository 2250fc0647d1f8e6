package v1

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/pkg/ai"
	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/i18n"
)

type AudioChatLogic struct {
	ctx        context.Context
	transcribe ai.TranscribeDriver
	chat       *ChatLogic
}

func NewAudioChatLogic(ctx context.Context, core *core.Core) *AudioChatLogic {
	return &AudioChatLogic{
		ctx:        ctx,
		transcribe: core.TranscribeDriver(),
		chat:       NewChatLogic(ctx, core),
	}
}

type AudioChatArgs struct {
	AudioData   string
	AudioFormat string
	SessionID   string
}

type AudioChatResult struct {
	Reply           string `json:"reply"`
	SessionID       string `json:"sessionId"`
	TranscribedText string `json:"transcribedText"`
}

// SendAudio transcribes one voice clip and relays the transcript as a
// plain chat turn. The transcript travels back so the widget can echo
// what the user said.
func (l *AudioChatLogic) SendAudio(args AudioChatArgs) (*AudioChatResult, error) {
	if args.AudioData == "" || args.AudioFormat == "" {
		return nil, errors.New("AudioChatLogic.SendAudio.validate", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if l.transcribe == nil {
		return nil, errors.New("AudioChatLogic.SendAudio.driver", i18n.ERROR_AI_NOT_CONFIGURED, nil).Code(http.StatusInternalServerError)
	}

	raw, err := base64.StdEncoding.DecodeString(args.AudioData)
	if err != nil {
		return nil, errors.New("AudioChatLogic.SendAudio.decode", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}

	transcript, err := l.transcribe.Transcribe(l.ctx, bytes.NewReader(raw), "audio."+args.AudioFormat)
	if err != nil {
		return nil, l.chat.mapProviderError("AudioChatLogic.SendAudio.Transcribe", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.New("AudioChatLogic.SendAudio.empty", i18n.ERROR_TRANSCRIBE_EMPTY, nil).Code(http.StatusInternalServerError)
	}

	result, err := l.chat.SendMessage(ChatRequestArgs{
		Message:   transcript,
		SessionID: args.SessionID,
	})
	if err != nil {
		return nil, errors.Trace("AudioChatLogic.SendAudio", err)
	}

	return &AudioChatResult{
		Reply:           result.Reply,
		SessionID:       result.SessionID,
		TranscribedText: transcript,
	}, nil
}
