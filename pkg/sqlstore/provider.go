package sqlstore

import (
	"github.com/jmoiron/sqlx"

	"github.com/mobilien/mobi-agent/pkg/utils"
)

type ConnectConfig interface {
	FormatDSN() string
}

// SqlProvider holds the pooled master connection and one or more read
// replicas. With a single DSN the master doubles as the replica.
type SqlProvider struct {
	master   *sqlx.DB
	replicas []*sqlx.DB
}

func (s *SqlProvider) GetMaster() *sqlx.DB {
	return s.master
}

func (s *SqlProvider) GetReplica() *sqlx.DB {
	return s.replicas[utils.Random(0, len(s.replicas)-1)]
}

func (s *SqlProvider) Close() error {
	for _, v := range s.replicas {
		if v != s.master {
			_ = v.Close()
		}
	}
	return s.master.Close()
}

func (s *SqlProvider) initConnection(conf ConnectConfig) (*sqlx.DB, error) {
	engine := sqlx.MustOpen("postgres", conf.FormatDSN())
	return engine, nil
}

func MustSetupProvider(m ConnectConfig, s ...ConnectConfig) *SqlProvider {
	var (
		err      error
		engine   *sqlx.DB
		slaves   []*sqlx.DB
		provider = &SqlProvider{}
	)

	if engine, err = provider.initConnection(m); err != nil {
		panic(err)
	}

	if len(s) == 0 {
		slaves = append(slaves, engine)
	}

	for _, v := range s {
		slave, err := provider.initConnection(v)
		if err != nil {
			panic(err)
		}
		slaves = append(slaves, slave)
	}

	provider.master = engine
	provider.replicas = slaves

	return provider
}
