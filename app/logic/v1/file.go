package v1

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/i18n"
	"github.com/mobilien/mobi-agent/pkg/types"
)

// FILE_CONTENT_PLACEHOLDER stands in for attachments that are not
// readable text, so the turn still tells the model something was sent.
const FILE_CONTENT_PLACEHOLDER = "[Unable to read file content]"

type FileChatLogic struct {
	ctx  context.Context
	chat *ChatLogic
}

func NewFileChatLogic(ctx context.Context, core *core.Core) *FileChatLogic {
	return &FileChatLogic{
		ctx:  ctx,
		chat: NewChatLogic(ctx, core),
	}
}

type FileChatArgs struct {
	Message   string
	Files     []types.ChatFile
	SessionID string
}

// SendFiles inlines the attachments into one text turn and relays it
// through the regular chat path.
func (l *FileChatLogic) SendFiles(args FileChatArgs) (*ChatResult, error) {
	if len(args.Files) == 0 {
		return nil, errors.New("FileChatLogic.SendFiles.validate", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	sections := make([]string, 0, len(args.Files))
	for _, file := range args.Files {
		sections = append(sections, fmt.Sprintf("--- %s (%s) ---\n%s", file.Name, file.Type, decodeFileContent(file.Data)))
	}
	combined := strings.Join(sections, "\n\n")

	var prompt string
	if msg := strings.TrimSpace(args.Message); msg != "" {
		prompt = msg + "\n\nCsatolt fájl(ok) tartalma:\n" + combined
	} else {
		prompt = "Kérlek, elemezd a következő fájl(ok) tartalmát:\n" + combined
	}

	result, err := l.chat.SendMessage(ChatRequestArgs{
		Message:   prompt,
		SessionID: args.SessionID,
	})
	if err != nil {
		return nil, errors.Trace("FileChatLogic.SendFiles", err)
	}
	return result, nil
}

func decodeFileContent(data string) string {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil || !utf8.Valid(raw) {
		return FILE_CONTENT_PLACEHOLDER
	}
	return string(raw)
}
