package sqlstore

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/mobilien/mobi-agent/pkg/register"
	"github.com/mobilien/mobi-agent/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ContextDataStore = NewContextDataStore(provider)
	})
}

type ContextDataStore struct {
	CommonFields
}

func NewContextDataStore(provider SqlProviderAchieve) *ContextDataStore {
	repo := &ContextDataStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONTEXT_DATA)
	repo.SetAllColumns("id", "category", "key_name", "data")
	return repo
}

func (s *ContextDataStore) Get(ctx context.Context, category, keyName string) (*types.ContextData, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"category": category, "key_name": keyName})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ContextData
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *ContextDataStore) List(ctx context.Context, category string) ([]types.ContextData, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"category": category}).
		OrderBy("key_name ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.ContextData
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}
