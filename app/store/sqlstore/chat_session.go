package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mobilien/mobi-agent/pkg/register"
	"github.com/mobilien/mobi-agent/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChatSessionStore = NewChatSessionStore(provider)
	})
}

type ChatSessionStore struct {
	CommonFields
}

func NewChatSessionStore(provider SqlProviderAchieve) *ChatSessionStore {
	repo := &ChatSessionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CHAT_SESSION)
	repo.SetAllColumns("id", "created_at", "updated_at")
	return repo
}

func (s *ChatSessionStore) Create(ctx context.Context, data types.ChatSession) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "created_at", "updated_at").
		Values(data.ID, data.CreatedAt, data.UpdatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ChatSessionStore) Get(ctx context.Context, sessionID string) (*types.ChatSession, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": sessionID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ChatSession
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *ChatSessionStore) UpdateAccessTime(ctx context.Context, sessionID string) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": sessionID}).Set("updated_at", time.Now().Unix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ChatSessionStore) Total(ctx context.Context) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())

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
