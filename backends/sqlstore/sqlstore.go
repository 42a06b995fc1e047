// Package sqlstore keeps counters in a database/sql table. It supports the
// sqlite3 and mysql drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ajiwo/askailimiter/backends"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"

	DefaultTable = "askai_kv"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

type Config struct {
	// Driver is either "sqlite3" or "mysql"
	Driver   string
	DSN      string
	Table    string
	MaxConns int
	MaxIdle  int

	ConnErrorStrings []string
}

// Backend stores one row per key. expires_at holds unix nanoseconds, 0 means
// the row never expires.
type Backend struct {
	db       *sql.DB
	driver   string
	q        queries
	patterns []string
	now      func() time.Time
}

type queries struct {
	get, takeover, insert, update, remove string
}

func newQueries(driver, table string) (ddl string, q queries) {
	keyType, insertIgnore := "TEXT", "INSERT OR IGNORE"
	if driver == DriverMySQL {
		keyType, insertIgnore = "VARCHAR(255)", "INSERT IGNORE"
	}

	ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		k %s NOT NULL PRIMARY KEY,
		v BLOB NOT NULL,
		ver BIGINT NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0
	)`, table, keyType)

	q = queries{
		get: fmt.Sprintf(`SELECT v, ver FROM %s WHERE k = ? AND (expires_at = 0 OR expires_at > ?)`, table),
		takeover: fmt.Sprintf(`UPDATE %s SET v = ?, ver = ver + 1, expires_at = ?
			WHERE k = ? AND expires_at <> 0 AND expires_at <= ?`, table),
		insert: fmt.Sprintf(`%s INTO %s (k, v, ver, expires_at) VALUES (?, ?, ?, ?)`, insertIgnore, table),
		update: fmt.Sprintf(`UPDATE %s SET v = ?, ver = ver + 1, expires_at = ?
			WHERE k = ? AND ver = ? AND (expires_at = 0 OR expires_at > ?)`, table),
		remove: fmt.Sprintf(`DELETE FROM %s WHERE k = ?`, table),
	}
	return ddl, q
}

func New(config Config) (*Backend, error) {
	switch config.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, NewInvalidConfigError("driver " + config.Driver)
	}
	if config.DSN == "" {
		return nil, NewInvalidConfigError("dsn")
	}
	if config.Table == "" {
		config.Table = DefaultTable
	}
	if !tableName.MatchString(config.Table) {
		return nil, NewInvalidConfigError("table " + config.Table)
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, NewOpenFailedError(config.Driver, err)
	}

	// SQLite only supports one writer at a time
	if config.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		if config.MaxConns > 0 {
			db.SetMaxOpenConns(config.MaxConns)
		}
		if config.MaxIdle > 0 {
			db.SetMaxIdleConns(config.MaxIdle)
		}
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewOpenFailedError(config.Driver, err)
	}

	if config.Driver == DriverSQLite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=10000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, NewOpenFailedError(config.Driver, err)
			}
		}
	}

	ddl, q := newQueries(config.Driver, config.Table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, NewTableCreationFailedError(config.Table, err)
	}

	patterns := config.ConnErrorStrings
	if len(patterns) == 0 {
		patterns = connErrorStrings
	}

	return &Backend{
		db:       db,
		driver:   config.Driver,
		q:        q,
		patterns: patterns,
		now:      time.Now,
	}, nil
}

// DB exposes the underlying handle, mostly for tests.
func (s *Backend) DB() *sql.DB {
	return s.db
}

func (s *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	var value []byte
	var ver int64

	err := s.db.QueryRowContext(ctx, s.q.get, key, s.now().UnixNano()).Scan(&value, &ver)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backends.NoVersion, nil
	}
	if err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, backends.MaybeConnError("sqlstore:Get", err, s.patterns))
	}
	if value == nil {
		value = []byte{}
	}
	return value, backends.Version(ver), nil
}

func (s *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, ttl time.Duration) (bool, error) {
	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}
	if value == nil {
		value = []byte{}
	}

	if expected != backends.NoVersion {
		res, err := s.db.ExecContext(ctx, s.q.update, value, expiresAt, key, int64(expected), now.UnixNano())
		return s.applied(key, res, err)
	}

	// an expired row is reused with a bumped version before a fresh insert is tried
	res, err := s.db.ExecContext(ctx, s.q.takeover, value, expiresAt, key, now.UnixNano())
	ok, err := s.applied(key, res, err)
	if ok || err != nil {
		return ok, err
	}

	res, err = s.db.ExecContext(ctx, s.q.insert, key, value, max(now.UnixNano(), 1), expiresAt)
	return s.applied(key, res, err)
}

func (s *Backend) applied(key string, res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, NewCheckAndSetFailedError(key, backends.MaybeConnError("sqlstore:CheckAndSet", err, s.patterns))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, NewCheckAndSetFailedError(key, err)
	}
	return n == 1, nil
}

func (s *Backend) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.remove, key); err != nil {
		return NewDeleteFailedError(key, backends.MaybeConnError("sqlstore:Delete", err, s.patterns))
	}
	return nil
}

func (s *Backend) Close() error {
	if err := s.db.Close(); err != nil {
		return NewCloseFailedError(err)
	}
	return nil
}
