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
		provider.stores.ContactStore = NewContactStore(provider)
	})
}

type ContactStore struct {
	CommonFields
}

func NewContactStore(provider SqlProviderAchieve) *ContactStore {
	repo := &ContactStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONTACT_REQUEST)
	repo.SetAllColumns("id", "name", "email", "message", "ip_address", "user_agent", "created_at")
	return repo
}

func (s *ContactStore) Create(ctx context.Context, data types.ContactRequest) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("name", "email", "message", "ip_address", "user_agent", "created_at").
		Values(data.Name, data.Email, data.Message, data.IPAddress, data.UserAgent, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
