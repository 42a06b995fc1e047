package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ajiwo/askailimiter/backends"
)

// DefaultTable is the table holding counters when Config.Table is empty
const DefaultTable = "askai_kv"

type Config struct {
	ConnString string
	MaxConns   int32
	MinConns   int32
	Table      string

	// ConnErrorStrings overrides the patterns that classify an error as a
	// connectivity failure.
	ConnErrorStrings []string
}

// Backend keeps one row per key with a version column bumped on every write.
type Backend struct {
	pool     *pgxpool.Pool
	queries  queries
	patterns []string
	now      func() time.Time
}

type queries struct {
	create, get, insert, update, remove string
}

func newQueries(table string) queries {
	t := pgx.Identifier{table}.Sanitize()
	return queries{
		create: fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key TEXT PRIMARY KEY,
				value BYTEA NOT NULL,
				version BIGINT NOT NULL,
				expires_at TIMESTAMP WITH TIME ZONE
			)`, t),
		get: fmt.Sprintf(`
			SELECT value, version
			FROM %s
			WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`, t),
		// an expired row is taken over by bumping its version
		insert: fmt.Sprintf(`
			INSERT INTO %[1]s (key, value, version, expires_at)
			VALUES ($1, $2, $5, $3)
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				version = %[1]s.version + 1,
				expires_at = EXCLUDED.expires_at
			WHERE %[1]s.expires_at IS NOT NULL AND %[1]s.expires_at <= $4`, t),
		update: fmt.Sprintf(`
			UPDATE %s
			SET value = $2, version = version + 1, expires_at = $3
			WHERE key = $1 AND version = $4 AND (expires_at IS NULL OR expires_at > $5)`, t),
		remove: fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, t),
	}
}

func New(config Config) (*Backend, error) {
	if config.ConnString == "" {
		return nil, NewInvalidConfigError("conn string")
	}
	if config.MaxConns == 0 {
		config.MaxConns = 10
	}
	if config.MinConns == 0 {
		config.MinConns = 2
	}
	if config.MinConns > config.MaxConns {
		return nil, NewInvalidPoolConfigError("min conns exceeds max conns")
	}
	if config.Table == "" {
		config.Table = DefaultTable
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnString)
	if err != nil {
		return nil, NewInvalidConnStringError(err)
	}
	poolConfig.MaxConns = config.MaxConns
	poolConfig.MinConns = config.MinConns

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, NewPoolCreationFailedError(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, NewPingFailedError(err)
	}

	patterns := config.ConnErrorStrings
	if len(patterns) == 0 {
		patterns = connErrorStrings
	}

	p := &Backend{pool: pool, queries: newQueries(config.Table), patterns: patterns, now: time.Now}
	if _, err := pool.Exec(ctx, p.queries.create); err != nil {
		pool.Close()
		return nil, NewTableCreationFailedError(err)
	}
	return p, nil
}

func (p *Backend) GetPool() *pgxpool.Pool {
	return p.pool
}

func (p *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	var value []byte
	var version int64

	err := p.pool.QueryRow(ctx, p.queries.get, key, p.now()).Scan(&value, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, backends.NoVersion, nil
	}
	if err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, backends.MaybeConnError("postgres:Get", err, p.patterns))
	}
	if value == nil {
		value = []byte{}
	}
	return value, backends.Version(version), nil
}

func (p *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	now := p.now()
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}
	if value == nil {
		value = []byte{}
	}

	var (
		tag pgconn.CommandTag
		err error
	)
	if expected == backends.NoVersion {
		tag, err = p.pool.Exec(ctx, p.queries.insert, key, value, expiresAt, now, initialVersion(now))
	} else {
		tag, err = p.pool.Exec(ctx, p.queries.update, key, value, expiresAt, int64(expected), now)
	}
	if err != nil {
		return false, NewCheckAndSetFailedError(key, backends.MaybeConnError("postgres:CheckAndSet", err, p.patterns))
	}
	return tag.RowsAffected() == 1, nil
}

// initialVersion seeds a new row from the clock so a key recreated after
// Delete does not hand out a version an old reader may still hold.
func initialVersion(now time.Time) int64 {
	return max(now.UnixNano(), 1)
}

func (p *Backend) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, p.queries.remove, key); err != nil {
		return NewDeleteFailedError(key, backends.MaybeConnError("postgres:Delete", err, p.patterns))
	}
	return nil
}

func (p *Backend) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
