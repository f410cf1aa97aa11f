// Package storetest is a behavior suite shared by the node.Store adapters.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocm-mapper/node"
)

// Sample returns a node carrying every canonical property type.
func Sample(path string) *node.Node {
	n := node.New(path, "ocm:sample")
	n.Set("ocm:title", "hello")
	n.Set("ocm:count", int64(42))
	n.Set("ocm:ratio", 0.25)
	n.Set("ocm:flag", true)
	n.Set("ocm:at", time.Date(2024, 2, 29, 12, 30, 0, 123000000, time.UTC))
	n.Set("ocm:blob", []byte{0, 1, 2})
	n.Set("ocm:tags", []any{"a", "b"})
	n.Set("ocm:refs", []any{int64(1), int64(2)})

	return n
}

// Run exercises a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) node.Store) {
	t.Helper()

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		in := Sample("/content/a")
		require.NoError(t, s.Save(ctx, in))
		assert.Equal(t, int64(1), in.Version)

		got, err := s.Fetch(ctx, "/content/a")
		require.NoError(t, err)

		want := Sample("/content/a")
		want.Version = 1

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("node mismatch (-want +got):\n%s\ngot: %s", diff, spew.Sdump(got))
		}
	})

	t.Run("save normalizes and bumps version", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		n := node.New("/v", "ocm:v")
		n.Set("ocm:n", 7)
		n.Set("ocm:list", []string{"x", "y"})
		require.NoError(t, s.Save(ctx, n))
		require.NoError(t, s.Save(ctx, n))
		assert.Equal(t, int64(2), n.Version)

		got, err := s.Fetch(ctx, "/v")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.Equal(t, int64(7), got.Properties["ocm:n"])
		assert.Equal(t, []any{"x", "y"}, got.Properties["ocm:list"])
	})

	t.Run("fetched nodes are copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, Sample("/c")))

		got, err := s.Fetch(ctx, "/c")
		require.NoError(t, err)
		got.Set("ocm:title", "changed")

		again, err := s.Fetch(ctx, "/c")
		require.NoError(t, err)
		assert.Equal(t, "hello", again.Properties["ocm:title"])
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Fetch(ctx, "/missing")
		assert.ErrorIs(t, err, node.ErrNotFound)

		assert.ErrorIs(t, s.Remove(ctx, "/missing"), node.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, Sample("/gone")))
		require.NoError(t, s.Remove(ctx, "/gone"))

		_, err := s.Fetch(ctx, "/gone")
		assert.ErrorIs(t, err, node.ErrNotFound)
	})

	t.Run("invalid", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		assert.Error(t, s.Save(ctx, node.New("relative", "ocm:x")))

		bad := node.New("/bad", "ocm:x")
		bad.Properties["ocm:m"] = map[string]int{}
		assert.ErrorIs(t, s.Save(ctx, bad), node.ErrUnsupportedValue)
	})

	t.Run("list", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, p := range []string{"/b", "/a/x", "/a", "/ab", "/a/x/y"} {
			require.NoError(t, s.Save(ctx, node.New(p, "ocm:x")))
		}

		got, err := s.List(ctx, "/a")
		require.NoError(t, err)
		assert.Equal(t, []string{"/a", "/a/x", "/a/x/y"}, got)

		all, err := s.List(ctx, "/")
		require.NoError(t, err)
		assert.Equal(t, []string{"/a", "/a/x", "/a/x/y", "/ab", "/b"}, all)
	})

	t.Run("canceled context", func(t *testing.T) {
		s := newStore(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Fetch(ctx, "/a")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
