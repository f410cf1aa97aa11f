// Package kvstore is a node.Store backed by a NATS JetStream key-value
// bucket. Each node is one entry holding the node JSON codec; keys are the
// base64url encoding of the node path.
package kvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"ocm-mapper/node"
	"ocm-mapper/store"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "OCM_NODES"

// Bucket is the part of jetstream.KeyValue the store uses.
type Bucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Create(ctx context.Context, key string, value []byte, opts ...jetstream.KVCreateOpt) (uint64, error)
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	ListKeys(ctx context.Context, opts ...jetstream.WatchOpt) (jetstream.KeyLister, error)
}

// Store keeps nodes in a KV bucket.
type Store struct {
	bucket Bucket
	conn   *nats.Conn
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New wraps an existing bucket.
func New(bucket Bucket, opts ...Option) *Store {
	s := &Store{bucket: bucket, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open returns a store over the named bucket, creating the bucket if needed.
func Open(ctx context.Context, js jetstream.JetStream, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}

	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucket, err)
	}

	return New(kv, opts...), nil
}

// Connect dials the NATS server at url and opens the bucket. Close releases
// the connection.
func Connect(ctx context.Context, url, bucket string, opts ...Option) (*Store, error) {
	nc, err := nats.Connect(url, nats.Name("ocm-mapper"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	s, err := Open(ctx, js, bucket, opts...)
	if err != nil {
		nc.Close()
		return nil, err
	}

	s.conn = nc

	return s, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}

	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("ocm-mapper %s nodes", strings.ToLower(name)),
		History:     5,
	})
}

// Close closes the NATS connection opened by Connect.
func (s *Store) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}

	return nil
}

// Key returns the bucket key of a node path.
func Key(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}

// PathOf is the inverse of Key.
func PathOf(key string) (string, error) {
	p, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("decode key %q: %w", key, err)
	}

	return string(p), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}

// isConflict reports a failed Create on an existing key or an Update against
// a stale revision.
func isConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}

	var apiErr *jetstream.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

// Fetch implements node.Resolver.
func (s *Store) Fetch(ctx context.Context, path string) (*node.Node, error) {
	n, _, err := s.get(ctx, path)
	return n, err
}

func (s *Store) get(ctx context.Context, path string) (*node.Node, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	entry, err := s.bucket.Get(ctx, Key(path))
	switch {
	case isNotFound(err):
		return nil, 0, fmt.Errorf("fetch %s: %w", path, node.ErrNotFound)
	case err != nil:
		return nil, 0, fmt.Errorf("fetch %s: %w", path, err)
	}

	n, err := node.Unmarshal(entry.Value())
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", path, err)
	}

	return n, entry.Revision(), nil
}

// Save implements node.Writer. Creating a node requires the key to be absent
// and replacing one is conditional on the revision read, so concurrent saves
// of one path fail with node.ErrConflict instead of losing a version.
func (s *Store) Save(ctx context.Context, n *node.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := store.Prepare(n)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	prev, revision, err := s.get(ctx, c.Path)

	switch {
	case errors.Is(err, node.ErrNotFound):
		c.Version = 1
	case err != nil:
		return fmt.Errorf("save: %w", err)
	default:
		c.Version = prev.Version + 1
	}

	data, err := node.Marshal(c)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.Path, err)
	}

	if prev == nil {
		_, err = s.bucket.Create(ctx, Key(c.Path), data)
	} else {
		_, err = s.bucket.Update(ctx, Key(c.Path), data, revision)
	}

	switch {
	case isConflict(err):
		return fmt.Errorf("save %s: %w: %w", c.Path, node.ErrConflict, err)
	case err != nil:
		return fmt.Errorf("save %s: %w", c.Path, err)
	}

	n.Version = c.Version

	s.logger.Debug("saved node", "path", c.Path, "version", c.Version)

	return nil
}

// Remove implements node.Writer.
func (s *Store) Remove(ctx context.Context, path string) error {
	if _, _, err := s.get(ctx, path); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	if err := s.bucket.Delete(ctx, Key(path)); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}

// List implements node.Store.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lister, err := s.bucket.ListKeys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	defer func() { _ = lister.Stop() }()

	var paths []string

	for key := range lister.Keys() {
		p, err := PathOf(key)
		if err != nil {
			s.logger.Warn("skipping foreign key", "key", key, "error", err)
			continue
		}

		if store.Within(prefix, p) {
			paths = append(paths, p)
		}
	}

	slices.Sort(paths)

	return paths, nil
}

var _ node.Store = (*Store)(nil)
