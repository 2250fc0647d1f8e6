package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mobilien/mobi-agent/pkg/register"
	"github.com/mobilien/mobi-agent/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChatMessageStore = NewChatMessageStore(provider)
	})
}

type ChatMessageStore struct {
	CommonFields
}

func NewChatMessageStore(provider SqlProviderAchieve) *ChatMessageStore {
	repo := &ChatMessageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_MESSAGE)
	repo.SetAllColumns("id", "session_id", "role", "content", "tokens_used", "model", "created_at")
	return repo
}

func (s *ChatMessageStore) Create(ctx context.Context, data *types.ChatMessage) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("session_id", "role", "content", "tokens_used", "model", "created_at").
		Values(data.SessionID, data.Role, data.Content, data.TokensUsed, data.Model, data.CreatedAt).
		Suffix("RETURNING id")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if err = s.GetMaster(ctx).QueryRowx(queryString, args...).Scan(&data.ID); err != nil {
		return err
	}
	return nil
}

// ListBySession picks the newest limit rows, then flips them back to
// chronological order so callers can splice them straight into a prompt.
func (s *ChatMessageStore) ListBySession(ctx context.Context, sessionID string, limit uint64) ([]types.ChatMessage, error) {
	recent := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC", "id DESC")

	if limit > 0 {
		recent = recent.Limit(limit)
	}

	query := sq.Select("*").FromSelect(recent, "recent").OrderBy("created_at ASC", "id ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.ChatMessage
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ChatMessageStore) TotalBySession(ctx context.Context, sessionID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"session_id": sessionID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
