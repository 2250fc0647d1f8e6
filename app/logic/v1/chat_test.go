package v1

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/pkg/ai"
	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/types"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]types.ChatSession
	touched  map[string]int
	failing  bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]types.ChatSession),
		touched:  make(map[string]int),
	}
}

func (s *fakeSessionStore) Create(_ context.Context, data types.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return assert.AnError
	}
	if _, ok := s.sessions[data.ID]; !ok {
		s.sessions[data.ID] = data
	}
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, sessionID string) (*types.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return &session, nil
	}
	return nil, nil
}

func (s *fakeSessionStore) UpdateAccessTime(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return assert.AnError
	}
	s.touched[sessionID]++
	return nil
}

func (s *fakeSessionStore) Total(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sessions)), nil
}

type fakeMessageStore struct {
	mu      sync.Mutex
	rows    []types.ChatMessage
	failing bool
}

func (s *fakeMessageStore) Create(_ context.Context, data *types.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return assert.AnError
	}
	data.ID = int64(len(s.rows) + 1)
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	s.rows = append(s.rows, *data)
	return nil
}

func (s *fakeMessageStore) ListBySession(_ context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, assert.AnError
	}
	var matched []types.ChatMessage
	for _, row := range s.rows {
		if row.SessionID == sessionID {
			matched = append(matched, row)
		}
	}
	if uint64(len(matched)) > limit {
		matched = matched[uint64(len(matched))-limit:]
	}
	return matched, nil
}

func (s *fakeMessageStore) TotalBySession(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, row := range s.rows {
		if row.SessionID == sessionID {
			total++
		}
	}
	return total, nil
}

func (s *fakeMessageStore) snapshot() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ChatMessage(nil), s.rows...)
}

type fakeContextStore struct {
	rows []types.ContextData
}

func (s *fakeContextStore) Get(_ context.Context, category, keyName string) (*types.ContextData, error) {
	for _, row := range s.rows {
		if row.Category == category && row.KeyName == keyName {
			return &row, nil
		}
	}
	return nil, nil
}

func (s *fakeContextStore) List(_ context.Context, category string) ([]types.ContextData, error) {
	var matched []types.ContextData
	for _, row := range s.rows {
		if row.Category == category {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

type stubChatDriver struct {
	mu       sync.Mutex
	result   ai.GenerateResult
	err      error
	messages []ai.Message
	opts     ai.GenerateOptions
}

func (d *stubChatDriver) Name() string { return "stub" }

func (d *stubChatDriver) Generate(_ context.Context, messages []ai.Message, opts ai.GenerateOptions) (ai.GenerateResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = messages
	d.opts = opts
	if d.err != nil {
		return ai.GenerateResult{}, d.err
	}
	return d.result, nil
}

func (d *stubChatDriver) received() []ai.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ai.Message(nil), d.messages...)
}

func newTestChatLogic(driver ai.ChatDriver, sessions *fakeSessionStore, messages *fakeMessageStore, contexts *fakeContextStore) *ChatLogic {
	return &ChatLogic{
		ctx:          context.Background(),
		aiCfg:        core.AIConfig{Model: "test-model", HistoryLimit: 4},
		ctxCfg:       core.ContextConfig{},
		driver:       driver,
		sessions:     sessions,
		messages:     messages,
		contexts:     contexts,
		instructions: "Te vagy Mobi, az e-mobilitási asszisztens.",
	}
}

func waitForMessages(t *testing.T, store *fakeMessageStore, want int) []types.ChatMessage {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(store.snapshot()) >= want
	}, time.Second, 5*time.Millisecond)
	return store.snapshot()
}

func TestSendMessageNewSession(t *testing.T) {
	sessions := newFakeSessionStore()
	messages := &fakeMessageStore{}
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "Szia!", TokensUsed: 42, Model: "test-model"}}

	logic := newTestChatLogic(driver, sessions, messages, &fakeContextStore{})
	result, err := logic.SendMessage(ChatRequestArgs{Message: "Hol tudok tölteni?"})
	require.NoError(t, err)

	assert.Equal(t, "Szia!", result.Reply)
	assert.Regexp(t, regexp.MustCompile(`^session_\d+_[0-9a-z]{9}$`), result.SessionID)

	rows := waitForMessages(t, messages, 2)
	assert.Equal(t, types.MESSAGE_ROLE_USER, rows[0].Role)
	assert.Equal(t, "Hol tudok tölteni?", rows[0].Content)
	assert.Equal(t, types.MESSAGE_ROLE_ASSISTANT, rows[1].Role)
	assert.Equal(t, "Szia!", rows[1].Content)
	require.NotNil(t, rows[1].TokensUsed)
	assert.EqualValues(t, 42, *rows[1].TokensUsed)
	require.NotNil(t, rows[1].Model)
	assert.Equal(t, "test-model", *rows[1].Model)

	require.Eventually(t, func() bool {
		sessions.mu.Lock()
		defer sessions.mu.Unlock()
		return sessions.touched[result.SessionID] > 0
	}, time.Second, 5*time.Millisecond)
}

func TestSendMessageKeepsProvidedSessionID(t *testing.T) {
	sessions := newFakeSessionStore()
	messages := &fakeMessageStore{}
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}

	logic := newTestChatLogic(driver, sessions, messages, &fakeContextStore{})
	result, err := logic.SendMessage(ChatRequestArgs{Message: "hello", SessionID: "session_1_abcdefghi"})
	require.NoError(t, err)
	assert.Equal(t, "session_1_abcdefghi", result.SessionID)

	_, ok := sessions.sessions["session_1_abcdefghi"]
	assert.True(t, ok)
}

func TestSendMessageEmptyMessage(t *testing.T) {
	logic := newTestChatLogic(&stubChatDriver{}, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{})

	_, err := logic.SendMessage(ChatRequestArgs{Message: "   "})
	require.Error(t, err)

	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 400, ce.GetCode())
}

func TestSendMessageDriverNotConfigured(t *testing.T) {
	logic := newTestChatLogic(nil, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{})

	_, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.Error(t, err)

	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 500, ce.GetCode())
}

func TestSendMessageEmptyReplyFallback(t *testing.T) {
	messages := &fakeMessageStore{}
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "   "}}

	logic := newTestChatLogic(driver, newFakeSessionStore(), messages, &fakeContextStore{})
	result, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, FALLBACK_REPLY, result.Reply)

	rows := waitForMessages(t, messages, 2)
	assert.Equal(t, FALLBACK_REPLY, rows[1].Content)
}

func TestSendMessageUpstreamError(t *testing.T) {
	messages := &fakeMessageStore{}
	driver := &stubChatDriver{err: &ai.ProviderError{Driver: "stub", Kind: ai.ErrKindUpstream, StatusCode: 429, Body: "rate limited"}}

	logic := newTestChatLogic(driver, newFakeSessionStore(), messages, &fakeContextStore{})
	_, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.Error(t, err)

	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 429, ce.GetCode())
	assert.Equal(t, "rate limited", ce.Details())

	// the failed turn keeps the user row but never records an assistant row
	time.Sleep(20 * time.Millisecond)
	rows := messages.snapshot()
	require.Len(t, rows, 1)
	assert.Equal(t, types.MESSAGE_ROLE_USER, rows[0].Role)
}

func TestSendMessageTimeoutError(t *testing.T) {
	driver := &stubChatDriver{err: &ai.ProviderError{Driver: "stub", Kind: ai.ErrKindTimeout}}

	logic := newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{})
	_, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.Error(t, err)

	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, 500, ce.GetCode())
}

func TestSendMessageSurvivesStorageFailure(t *testing.T) {
	sessions := newFakeSessionStore()
	sessions.failing = true
	messages := &fakeMessageStore{failing: true}
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}

	logic := newTestChatLogic(driver, sessions, messages, &fakeContextStore{})
	result, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Reply)
}

func TestSendMessageHistoryReplay(t *testing.T) {
	messages := &fakeMessageStore{}
	for _, row := range []types.ChatMessage{
		{SessionID: "s1", Role: types.MESSAGE_ROLE_USER, Content: "first question"},
		{SessionID: "s1", Role: types.MESSAGE_ROLE_ASSISTANT, Content: "first answer"},
		{SessionID: "s2", Role: types.MESSAGE_ROLE_USER, Content: "other session"},
	} {
		require.NoError(t, messages.Create(context.Background(), &row))
	}

	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestChatLogic(driver, newFakeSessionStore(), messages, &fakeContextStore{})

	_, err := logic.SendMessage(ChatRequestArgs{Message: "second question", SessionID: "s1"})
	require.NoError(t, err)

	got := driver.received()
	require.Len(t, got, 4)
	assert.Equal(t, ai.RoleSystem, got[0].Role)
	assert.Equal(t, "first question", got[1].Content)
	assert.Equal(t, "first answer", got[2].Content)
	assert.Equal(t, ai.RoleUser, got[3].Role)
	assert.Equal(t, "second question", got[3].Content)
}

func TestSendMessageHistoryDisabled(t *testing.T) {
	messages := &fakeMessageStore{}
	require.NoError(t, messages.Create(context.Background(), &types.ChatMessage{
		SessionID: "s1", Role: types.MESSAGE_ROLE_USER, Content: "earlier",
	}))

	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestChatLogic(driver, newFakeSessionStore(), messages, &fakeContextStore{})
	logic.aiCfg.HistoryLimit = 0

	_, err := logic.SendMessage(ChatRequestArgs{Message: "now", SessionID: "s1"})
	require.NoError(t, err)

	got := driver.received()
	require.Len(t, got, 2)
	assert.Equal(t, ai.RoleSystem, got[0].Role)
	assert.Equal(t, "now", got[1].Content)
}

func TestSendMessageContextFromDatabase(t *testing.T) {
	contexts := &fakeContextStore{rows: []types.ContextData{
		{Category: "charging_prices", KeyName: "hu", Data: json.RawMessage(`{"mobiliti":{"ac":"199 Ft/kWh"}}`)},
	}}
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}

	logic := newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, contexts)
	_, err := logic.SendMessage(ChatRequestArgs{Message: "mennyibe kerül?"})
	require.NoError(t, err)

	system := driver.received()[0].Content
	assert.Contains(t, system, "KONTEXTUS - EV töltési árak Magyarországon:")
	assert.Contains(t, system, "mobiliti")
}

func TestSendMessageStaticContextFallback(t *testing.T) {
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{})
	logic.staticPrices = json.RawMessage(`{"static":"prices"}`)

	_, err := logic.SendMessage(ChatRequestArgs{Message: "árak?"})
	require.NoError(t, err)

	system := driver.received()[0].Content
	assert.Contains(t, system, "KONTEXTUS")
	assert.Contains(t, system, "static")
}

func TestSendMessageNoContextOmitsBlock(t *testing.T) {
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{})

	_, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.NoError(t, err)

	system := driver.received()[0].Content
	assert.False(t, strings.Contains(system, "KONTEXTUS"))
}

func TestSendMessageGenerateOptions(t *testing.T) {
	driver := &stubChatDriver{result: ai.GenerateResult{Reply: "ok"}}
	logic := newTestChatLogic(driver, newFakeSessionStore(), &fakeMessageStore{}, &fakeContextStore{})

	_, err := logic.SendMessage(ChatRequestArgs{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "test-model", driver.opts.Model)
	assert.Equal(t, 500, driver.opts.MaxTokens)
	assert.InDelta(t, 0.7, driver.opts.Temperature, 0.001)
	assert.Equal(t, 30*time.Second, driver.opts.Timeout)
}
