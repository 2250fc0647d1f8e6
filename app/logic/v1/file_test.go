package v1

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobilien/mobi-agent/pkg/ai"
	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/types"
)

func newTestFileLogic(chat *ChatLogic) *FileChatLogic {
	return &FileChatLogic{ctx: context.Background(), chat: chat}
}

func TestSendFilesInlinesContent(t *testing.T) {
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestFileLogic(newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendFiles(FileChatArgs{
		Message: "Mit gondolsz erről?",
		Files: []types.ChatFile{
			{Name: "notes.txt", Type: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("töltési jegyzet"))},
		},
	})
	require.NoError(t, err)

	got := driver.received()
	user := got[len(got)-1].Content
	assert.Contains(t, user, "Mit gondolsz erről?")
	assert.Contains(t, user, "Csatolt fájl(ok) tartalma:")
	assert.Contains(t, user, "--- notes.txt (text/plain) ---")
	assert.Contains(t, user, "töltési jegyzet")
}

func TestSendFilesWithoutMessage(t *testing.T) {
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestFileLogic(newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendFiles(FileChatArgs{
		Files: []types.ChatFile{
			{Name: "a.txt", Type: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("alpha"))},
			{Name: "b.txt", Type: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("beta"))},
		},
	})
	require.NoError(t, err)

	got := driver.received()
	user := got[len(got)-1].Content
	assert.Contains(t, user, "Kérlek, elemezd a következő fájl(ok) tartalmát:")
	assert.Contains(t, user, "--- a.txt (text/plain) ---")
	assert.Contains(t, user, "alpha")
	assert.Contains(t, user, "--- b.txt (text/plain) ---")
	assert.Contains(t, user, "beta")
}

func TestSendFilesUnreadableContent(t *testing.T) {
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestFileLogic(newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendFiles(FileChatArgs{
		Files: []types.ChatFile{
			{Name: "broken.bin", Type: "application/octet-stream", Data: "%%%not-base64%%%"},
			{Name: "binary.bin", Type: "application/octet-stream", Data: base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00, 0x80})},
		},
	})
	require.NoError(t, err)

	got := driver.received()
	user := got[len(got)-1].Content
	assert.Contains(t, user, "--- broken.bin (application/octet-stream) ---")
	assert.Contains(t, user, FILE_CONTENT_PLACEHOLDER)
	assert.Contains(t, user, "--- binary.bin (application/octet-stream) ---")
}

func TestSendFilesNoFiles(t *testing.T) {
	logic := newTestFileLogic(newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{}))

	_, err := logic.SendFiles(FileChatArgs{Message: "semmi"})
	require.Error(t, err)
	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 400, ce.GetCode())
}
