package sqlstore

import (
	"embed"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/mobilien/mobi-agent/app/store"
	"github.com/mobilien/mobi-agent/pkg/register"
	"github.com/mobilien/mobi-agent/pkg/sqlstore"
	"github.com/mobilien/mobi-agent/pkg/types"
)

func init() {
	sq.StatementBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

//go:embed *.sql
var CreateTableFiles embed.FS

var provider = &Provider{
	stores: &Stores{},
}

type Provider struct {
	*sqlstore.SqlProvider
	stores *Stores
}

type Stores struct {
	store.ChatSessionStore
	store.ChatMessageStore
	store.ContextDataStore
	store.NewsletterStore
	store.ContactStore
}

type RegisterKey struct{}

func MustSetup(m sqlstore.ConnectConfig, s ...sqlstore.ConnectConfig) func() *Provider {
	provider.SqlProvider = sqlstore.MustSetupProvider(m, s...)

	for _, f := range register.ResolveFuncHandlers[*Provider](RegisterKey{}) {
		f(provider)
	}

	return func() *Provider {
		return provider
	}
}

// Install applies the embedded schema files once, tracked in a
// migrations ledger table.
func (p *Provider) Install() error {
	if err := p.ensureMigrationTable(); err != nil {
		return err
	}

	files, err := CreateTableFiles.ReadDir(".")
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		if executed, err := p.isFileExecuted(file.Name()); err != nil {
			return err
		} else if executed {
			continue
		}

		content, err := CreateTableFiles.ReadFile(file.Name())
		if err != nil {
			return err
		}

		if _, err = p.SqlProvider.GetMaster().Exec(string(content)); err != nil {
			return err
		}

		if err = p.markFileExecuted(file.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) ensureMigrationTable() error {
	createTableSQL := `
CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `schema_migrations (
    filename VARCHAR(255) PRIMARY KEY,
    executed_at BIGINT NOT NULL
);`
	_, err := p.SqlProvider.GetMaster().Exec(createTableSQL)
	return err
}

func (p *Provider) isFileExecuted(filename string) (bool, error) {
	var count int
	err := p.SqlProvider.GetReplica().Get(&count,
		"SELECT COUNT(*) FROM "+types.TABLE_PREFIX+"schema_migrations WHERE filename = $1", filename)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Provider) markFileExecuted(filename string) error {
	_, err := p.SqlProvider.GetMaster().Exec(
		"INSERT INTO "+types.TABLE_PREFIX+"schema_migrations (filename, executed_at) VALUES ($1, $2) ON CONFLICT (filename) DO NOTHING",
		filename, time.Now().Unix())
	return err
}

func (p *Provider) ChatSessionStore() store.ChatSessionStore {
	return p.stores.ChatSessionStore
}

func (p *Provider) ChatMessageStore() store.ChatMessageStore {
	return p.stores.ChatMessageStore
}

func (p *Provider) ContextDataStore() store.ContextDataStore {
	return p.stores.ContextDataStore
}

func (p *Provider) NewsletterStore() store.NewsletterStore {
	return p.stores.NewsletterStore
}

func (p *Provider) ContactStore() store.ContactStore {
	return p.stores.ContactStore
}
