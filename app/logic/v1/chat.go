package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/app/store"
	"github.com/mobilien/mobi-agent/pkg/ai"
	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/i18n"
	"github.com/mobilien/mobi-agent/pkg/safe"
	"github.com/mobilien/mobi-agent/pkg/types"
	"github.com/mobilien/mobi-agent/pkg/utils"
)

// FALLBACK_REPLY is returned when the provider answers with an empty
// choice. The client never sees an empty 2xx reply.
const FALLBACK_REPLY = "Sajnálom, nem tudok válaszolni."

type ChatLogic struct {
	ctx context.Context

	aiCfg  core.AIConfig
	ctxCfg core.ContextConfig

	driver   ai.ChatDriver
	sessions store.ChatSessionStore
	messages store.ChatMessageStore
	contexts store.ContextDataStore

	instructions string
	staticPrices json.RawMessage

	metrics *core.Metrics
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:          ctx,
		aiCfg:        core.Cfg().AI,
		ctxCfg:       core.Cfg().Context,
		driver:       core.ChatDriver(),
		sessions:     core.Store().ChatSessionStore(),
		messages:     core.Store().ChatMessageStore(),
		contexts:     core.Store().ContextDataStore(),
		instructions: core.InstructionTemplate(),
		staticPrices: core.StaticPriceContext(),
		metrics:      core.Metrics(),
	}
}

type ChatRequestArgs struct {
	Message   string
	SessionID string
}

type ChatResult struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// SendMessage relays one user turn through the configured provider.
// Only the upstream call can fail the request; every storage touch is
// best-effort so the chat stays usable on a degraded database.
func (l *ChatLogic) SendMessage(args ChatRequestArgs) (*ChatResult, error) {
	message := strings.TrimSpace(args.Message)
	if message == "" {
		return nil, errors.New("ChatLogic.SendMessage.validate", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if l.driver == nil {
		return nil, errors.New("ChatLogic.SendMessage.driver", i18n.ERROR_AI_NOT_CONFIGURED, nil).Code(http.StatusInternalServerError)
	}

	sessionID := args.SessionID
	if sessionID == "" {
		sessionID = utils.GenChatSessionID()
	}

	bestEffort("create_session", func() error {
		return l.sessions.Create(l.ctx, types.ChatSession{ID: sessionID})
	})
	bestEffort("persist_user_turn", func() error {
		return l.messages.Create(l.ctx, &types.ChatMessage{
			SessionID: sessionID,
			Role:      types.MESSAGE_ROLE_USER,
			Content:   message,
		})
	})

	contexts := l.loadContexts()
	history := l.loadHistory(sessionID, message)

	prompt := ai.BuildMessages(l.instructions, contexts, history, message)

	if l.metrics != nil {
		timer := l.metrics.UpstreamRequestTimer(l.driver.Name())
		defer timer.ObserveDuration()
	}

	result, err := l.driver.Generate(l.ctx, prompt, ai.GenerateOptions{
		Model:       l.aiCfg.Model,
		MaxTokens:   l.aiCfg.GetMaxTokens(),
		Temperature: l.aiCfg.GetTemperature(),
		Timeout:     l.aiCfg.GetTimeout(),
	})
	if err != nil {
		return nil, l.mapProviderError("ChatLogic.SendMessage.Generate", err)
	}

	reply := result.Reply
	if strings.TrimSpace(reply) == "" {
		reply = FALLBACK_REPLY
	}

	l.persistAssistantTurn(sessionID, reply, result)

	return &ChatResult{
		Reply:     reply,
		SessionID: sessionID,
	}, nil
}

// loadContexts gathers the prompt grounding documents. Database rows win;
// the static file is the fallback. Absent is never an error here.
func (l *ChatLogic) loadContexts() []ai.ContextBlock {
	var blocks []ai.ContextBlock

	if l.contexts != nil {
		if l.metrics != nil {
			timer := l.metrics.ContextLoadTimer("db")
			defer timer.ObserveDuration()
		}

		if l.ctxCfg.KeyName != "" {
			row, err := l.contexts.Get(l.ctx, l.ctxCfg.GetCategory(), l.ctxCfg.KeyName)
			if err != nil {
				slog.Warn("context lookup failed", slog.String("category", l.ctxCfg.GetCategory()), slog.String("error", err.Error()))
			} else if row != nil {
				blocks = append(blocks, ai.ContextBlock{Label: l.ctxCfg.GetLabel(), Data: row.Data})
			}
		} else {
			rows, err := l.contexts.List(l.ctx, l.ctxCfg.GetCategory())
			if err != nil {
				slog.Warn("context listing failed", slog.String("category", l.ctxCfg.GetCategory()), slog.String("error", err.Error()))
			}
			for _, row := range rows {
				blocks = append(blocks, ai.ContextBlock{Label: l.ctxCfg.GetLabel(), Data: row.Data})
			}
		}
	}

	if len(blocks) == 0 && len(l.staticPrices) > 0 {
		blocks = append(blocks, ai.ContextBlock{Label: l.ctxCfg.GetLabel(), Data: l.staticPrices})
	}

	return blocks
}

// loadHistory replays up to HistoryLimit prior turns. The user turn was
// already persisted above, so the newest matching row is dropped to keep
// it out of the prompt twice.
func (l *ChatLogic) loadHistory(sessionID, currentMessage string) []ai.Message {
	if l.aiCfg.HistoryLimit <= 0 || l.messages == nil {
		return nil
	}

	rows, err := l.messages.ListBySession(l.ctx, sessionID, uint64(l.aiCfg.HistoryLimit)+1)
	if err != nil {
		slog.Warn("history lookup failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		return nil
	}

	if n := len(rows); n > 0 && rows[n-1].Role == types.MESSAGE_ROLE_USER && rows[n-1].Content == currentMessage {
		rows = rows[:n-1]
	}
	if len(rows) > l.aiCfg.HistoryLimit {
		rows = rows[len(rows)-l.aiCfg.HistoryLimit:]
	}

	history := make([]ai.Message, 0, len(rows))
	for _, row := range rows {
		history = append(history, ai.Message{Role: row.Role.String(), Content: row.Content})
	}
	return history
}

// persistAssistantTurn is fire-and-forget: the reply is already on its
// way to the client and outlives the request context.
func (l *ChatLogic) persistAssistantTurn(sessionID, reply string, result ai.GenerateResult) {
	go safe.Run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		msg := &types.ChatMessage{
			SessionID: sessionID,
			Role:      types.MESSAGE_ROLE_ASSISTANT,
			Content:   reply,
		}
		if result.TokensUsed > 0 {
			tokens := result.TokensUsed
			msg.TokensUsed = &tokens
		}
		if result.Model != "" {
			model := result.Model
			msg.Model = &model
		}

		bestEffort("persist_assistant_turn", func() error {
			return l.messages.Create(ctx, msg)
		})
		bestEffort("touch_session", func() error {
			return l.sessions.UpdateAccessTime(ctx, sessionID)
		})
	})
}

func (l *ChatLogic) mapProviderError(trace string, err error) error {
	pe, ok := ai.AsProviderError(err)
	if !ok {
		return errors.New(trace, i18n.ERROR_INTERNAL, err)
	}

	if l.metrics != nil {
		l.metrics.UpstreamErrorInc(string(pe.Kind))
	}

	switch pe.Kind {
	case ai.ErrKindTimeout:
		return errors.New(trace, i18n.ERROR_AI_TIMEOUT, err).Code(http.StatusInternalServerError)
	case ai.ErrKindNetwork:
		return errors.New(trace, i18n.ERROR_AI_NETWORK, err).Code(http.StatusInternalServerError)
	default:
		code := pe.StatusCode
		if code < http.StatusBadRequest {
			code = http.StatusInternalServerError
		}
		return errors.New(trace, i18n.ERROR_AI_UPSTREAM, err).Code(code).WithDetails(pe.Body)
	}
}

// bestEffort enforces the swallow-and-log policy for persistence side
// effects in one place.
func bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		slog.Error("best-effort operation failed", slog.String("op", op), slog.String("error", err.Error()))
	}
}
