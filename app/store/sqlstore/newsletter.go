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
		provider.stores.NewsletterStore = NewNewsletterStore(provider)
	})
}

type NewsletterStore struct {
	CommonFields
}

func NewNewsletterStore(provider SqlProviderAchieve) *NewsletterStore {
	repo := &NewsletterStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_NEWSLETTER_SUBSCRIPTION)
	repo.SetAllColumns("id", "email", "source", "ip_address", "user_agent", "created_at", "updated_at")
	return repo
}

func (s *NewsletterStore) Upsert(ctx context.Context, data types.NewsletterSubscription) (int64, error) {
	now := time.Now().Unix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}

	query := sq.Insert(s.GetTable()).
		Columns("email", "source", "ip_address", "user_agent", "created_at", "updated_at").
		Values(data.Email, data.Source, data.IPAddress, data.UserAgent, data.CreatedAt, now).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
source = COALESCE(NULLIF(EXCLUDED.source, ''), ` + s.GetTable() + `.source),
ip_address = COALESCE(NULLIF(EXCLUDED.ip_address, ''), ` + s.GetTable() + `.ip_address),
user_agent = COALESCE(NULLIF(EXCLUDED.user_agent, ''), ` + s.GetTable() + `.user_agent),
updated_at = EXCLUDED.updated_at
RETURNING id`)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var id int64
	if err = s.GetMaster(ctx).QueryRowx(queryString, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
