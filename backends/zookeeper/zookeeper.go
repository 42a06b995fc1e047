package zookeeper

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/ajiwo/askailimiter/backends"
)

const DefaultRoot = "/askai"

type Config struct {
	Servers        []string
	SessionTimeout time.Duration
	// Root is the parent znode for all counters (default "/askai")
	Root string

	ConnErrorStrings []string
}

// Backend stores each key as a child znode of Root. The version is the
// znode data version plus one so that NoVersion stays free for absent keys.
// ZooKeeper has no znode TTL in the classic API, so the TTL argument is not
// applied.
type Backend struct {
	conn     *zk.Conn
	root     string
	patterns []string
}

func New(config Config) (*Backend, error) {
	if len(config.Servers) == 0 {
		return nil, NewInvalidConfigError("servers")
	}
	if config.SessionTimeout == 0 {
		config.SessionTimeout = 10 * time.Second
	}
	if config.Root == "" {
		config.Root = DefaultRoot
	}
	if !strings.HasPrefix(config.Root, "/") || strings.HasSuffix(config.Root, "/") {
		return nil, NewInvalidConfigError("root " + config.Root)
	}

	conn, _, err := zk.Connect(config.Servers, config.SessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, NewConnectionFailedError(config.Servers, err)
	}
	if err := ensurePath(conn, config.Root); err != nil {
		conn.Close()
		return nil, NewConnectionFailedError(config.Servers, err)
	}

	patterns := config.ConnErrorStrings
	if len(patterns) == 0 {
		patterns = connErrorStrings
	}
	return &Backend{conn: conn, root: config.Root, patterns: patterns}, nil
}

// ensurePath creates every missing znode along path.
func ensurePath(conn *zk.Conn, path string) error {
	parent := ""
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		parent += "/" + part
		_, err := conn.Create(parent, []byte{}, 0, zk.WorldACL(zk.PermAll))
		if err != nil && !errors.Is(err, zk.ErrNodeExists) {
			return err
		}
	}
	return nil
}

func (z *Backend) path(key string) string {
	return z.root + "/" + url.PathEscape(key)
}

func (z *Backend) Get(ctx context.Context, key string) ([]byte, backends.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, err)
	}
	data, stat, err := z.conn.Get(z.path(key))
	if errors.Is(err, zk.ErrNoNode) {
		return nil, backends.NoVersion, nil
	}
	if err != nil {
		return nil, backends.NoVersion, NewGetFailedError(key, backends.MaybeConnError("zookeeper:Get", err, z.patterns))
	}
	if data == nil {
		data = []byte{}
	}
	return data, backends.Version(stat.Version) + 1, nil
}

func (z *Backend) CheckAndSet(ctx context.Context, key string, value []byte, expected backends.Version, _ time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, NewCheckAndSetFailedError(key, err)
	}
	if value == nil {
		value = []byte{}
	}

	if expected == backends.NoVersion {
		_, err := z.conn.Create(z.path(key), value, 0, zk.WorldACL(zk.PermAll))
		if errors.Is(err, zk.ErrNodeExists) {
			return false, nil
		}
		if err != nil {
			return false, NewCheckAndSetFailedError(key, backends.MaybeConnError("zookeeper:Create", err, z.patterns))
		}
		return true, nil
	}

	if expected-1 > math.MaxInt32 {
		return false, nil
	}
	_, err := z.conn.Set(z.path(key), value, int32(expected-1))
	if errors.Is(err, zk.ErrBadVersion) || errors.Is(err, zk.ErrNoNode) {
		return false, nil
	}
	if err != nil {
		return false, NewCheckAndSetFailedError(key, backends.MaybeConnError("zookeeper:Set", err, z.patterns))
	}
	return true, nil
}

func (z *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewDeleteFailedError(key, err)
	}
	err := z.conn.Delete(z.path(key), -1)
	if err != nil && !errors.Is(err, zk.ErrNoNode) {
		return NewDeleteFailedError(key, backends.MaybeConnError("zookeeper:Delete", err, z.patterns))
	}
	return nil
}

func (z *Backend) Close() error {
	z.conn.Close()
	return nil
}
