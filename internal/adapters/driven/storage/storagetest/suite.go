// Package storagetest holds behaviour checks shared by every
// StorageBackend and LocalStore adapter.
package storagetest

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// RunBackend runs the StorageBackend checks against backends built by newBackend.
// Each subtest gets a fresh backend.
func RunBackend(t *testing.T, newBackend func(t *testing.T) driven.StorageBackend) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing returns not found", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.GetItem(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("set then get returns sanitised value", func(t *testing.T) {
		b := newBackend(t)
		value := map[string]any{
			"name":  "demo",
			"count": 3,
			"when":  time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
			"skip":  func() {},
		}
		require.NoError(t, b.SetItem(ctx, domain.KeyAutosave, value, domain.RecordKindAutosave))

		rec, err := b.GetItem(ctx, domain.KeyAutosave)
		require.NoError(t, err)
		assert.Equal(t, domain.KeyAutosave, rec.Key)
		assert.Equal(t, domain.RecordKindAutosave, rec.Kind)
		assert.False(t, rec.Timestamp.IsZero())

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, map[string]any{
			"name":  "demo",
			"count": float64(3),
			"when":  "2024-02-03T04:05:06.000Z",
		}, decoded)
	})

	t.Run("set overwrites", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.SetItem(ctx, "k", "first", domain.RecordKindGeneric))
		require.NoError(t, b.SetItem(ctx, "k", "second", domain.RecordKindGeneric))

		rec, err := b.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `"second"`, string(rec.Value))
	})

	t.Run("remove deletes and tolerates missing keys", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.SetItem(ctx, "k", 1, domain.RecordKindGeneric))
		require.NoError(t, b.RemoveItem(ctx, "k"))
		require.NoError(t, b.RemoveItem(ctx, "k"))

		_, err := b.GetItem(ctx, "k")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("keys filter by kind", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.SetItem(ctx, "b_auto", 1, domain.RecordKindAutosave))
		require.NoError(t, b.SetItem(ctx, "a_auto", 1, domain.RecordKindAutosave))
		require.NoError(t, b.SetItem(ctx, "versions", 1, domain.RecordKindVersion))

		keys, err := b.Keys(ctx, domain.RecordKindAutosave)
		require.NoError(t, err)
		assert.Equal(t, []string{"a_auto", "b_auto"}, keys)

		all, err := b.Keys(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a_auto", "b_auto", "versions"}, all)
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		b := newBackend(t)
		err := b.SetItem(ctx, "", 1, domain.RecordKindGeneric)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cyclic value is stored", func(t *testing.T) {
		b := newBackend(t)
		m := map[string]any{"name": "loop"}
		m["self"] = m
		require.NoError(t, b.SetItem(ctx, "cycle", m, domain.RecordKindGeneric))

		rec, err := b.GetItem(ctx, "cycle")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"loop","self":"[Circular Reference]"}`, string(rec.Value))
	})
}

// RunLocalStore runs the LocalStore checks against stores built by newStore.
func RunLocalStore(t *testing.T, newStore func(t *testing.T) driven.LocalStore) {
	t.Helper()

	t.Run("get missing returns not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetItem("missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("set get remove", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetItem(domain.FallbackKey(domain.KeyAutosave), []byte(`{"a":1}`)))

		got, err := s.GetItem(domain.FallbackKey(domain.KeyAutosave))
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))

		require.NoError(t, s.RemoveItem(domain.FallbackKey(domain.KeyAutosave)))
		require.NoError(t, s.RemoveItem(domain.FallbackKey(domain.KeyAutosave)))
		_, err = s.GetItem(domain.FallbackKey(domain.KeyAutosave))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("returned bytes are a copy", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetItem("k", []byte("abc")))

		got, err := s.GetItem("k")
		require.NoError(t, err)
		got[0] = 'z'

		again, err := s.GetItem("k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})
}
