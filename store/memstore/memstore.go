// Package memstore is an in-memory node.Store.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"ocm-mapper/node"
	"ocm-mapper/store"
)

// Store keeps nodes in a map guarded by a RWMutex. Nodes are copied on the
// way in and out.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*node.Node
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

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:  make(map[string]*node.Node),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fetch implements node.Resolver.
func (s *Store) Fetch(ctx context.Context, path string) (*node.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[path]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", path, node.ErrNotFound)
	}

	return n.Clone(), nil
}

// Save implements node.Writer.
func (s *Store) Save(ctx context.Context, n *node.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := store.Prepare(n)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.nodes[c.Path]; ok {
		c.Version = prev.Version + 1
	} else {
		c.Version = 1
	}

	s.nodes[c.Path] = c
	n.Version = c.Version

	s.logger.Debug("saved node", "path", c.Path, "version", c.Version)

	return nil
}

// Remove implements node.Writer.
func (s *Store) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[path]; !ok {
		return fmt.Errorf("remove %s: %w", path, node.ErrNotFound)
	}

	delete(s.nodes, path)

	return nil
}

// List implements node.Store.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string

	for _, p := range slices.Sorted(maps.Keys(s.nodes)) {
		if store.Within(prefix, p) {
			paths = append(paths, p)
		}
	}

	return paths, nil
}

// Len returns the number of stored nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes)
}

var _ node.Store = (*Store)(nil)
