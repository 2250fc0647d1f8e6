package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mobilien/mobi-agent/pkg/types"
)

func ErrorSqlBuild(err error) error {
	return fmt.Errorf("failed to build sql query, %w", err)
}

type SqlProviderAchieve interface {
	GetMaster() *sqlx.DB
	GetReplica() *sqlx.DB
}

// CommonFields carries the per-store table metadata shared by every
// sqlstore implementation.
type CommonFields struct {
	table      string
	provider   SqlProviderAchieve
	allColumns []string
}

func (c *CommonFields) GetTable() string {
	return c.table
}

func (c *CommonFields) SetAllColumns(str ...string) {
	c.allColumns = str
}

func (c *CommonFields) GetAllColumns() []string {
	return c.allColumns
}

func (c *CommonFields) SetTable(table types.TableName) {
	c.table = table.Name()
}

func (c *CommonFields) SetProvider(p SqlProviderAchieve) {
	c.provider = p
}

type Master interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRowx(query string, args ...interface{}) *sqlx.Row
}

type Replica interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
}

type dbWithContext struct {
	db  *sqlx.DB
	ctx context.Context
}

func (d *dbWithContext) Get(dest interface{}, query string, args ...interface{}) error {
	return d.db.GetContext(d.ctx, dest, query, args...)
}

func (d *dbWithContext) Select(dest interface{}, query string, args ...interface{}) error {
	return d.db.SelectContext(d.ctx, dest, query, args...)
}

func (d *dbWithContext) Exec(query string, args ...interface{}) (sql.Result, error) {
	return d.db.ExecContext(d.ctx, query, args...)
}

func (d *dbWithContext) QueryRowx(query string, args ...interface{}) *sqlx.Row {
	return d.db.QueryRowxContext(d.ctx, query, args...)
}

func (c *CommonFields) GetMaster(ctx context.Context) Master {
	if ctx == nil {
		return c.provider.GetMaster()
	}
	return &dbWithContext{
		db:  c.provider.GetMaster(),
		ctx: ctx,
	}
}

func (c *CommonFields) GetReplica(ctx context.Context) Replica {
	if ctx == nil {
		return c.provider.GetReplica()
	}
	return &dbWithContext{
		db:  c.provider.GetReplica(),
		ctx: ctx,
	}
}
