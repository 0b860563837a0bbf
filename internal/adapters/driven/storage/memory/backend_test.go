package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

func TestBackend(t *testing.T) {
	storagetest.RunBackend(t, func(t *testing.T) driven.StorageBackend {
		return NewBackend()
	})
}

func TestBackend_Close(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.SetItem(ctx, "k", 1, domain.RecordKindGeneric))
	assert.Equal(t, 1, b.Len())

	require.NoError(t, b.Close())

	_, err := b.GetItem(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, b.SetItem(ctx, "k", 1, domain.RecordKindGeneric), domain.ErrStorageUnavailable)
}

func TestBackend_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	b := NewBackend()
	require.NoError(t, b.SetItem(ctx, "k", "abc", domain.RecordKindGeneric))

	rec, err := b.GetItem(ctx, "k")
	require.NoError(t, err)
	rec.Value[1] = 'z'

	again, err := b.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(again.Value))
}

func TestLocalStore(t *testing.T) {
	storagetest.RunLocalStore(t, func(t *testing.T) driven.LocalStore {
		return NewLocalStore()
	})
}

func TestLocalStore_Quota(t *testing.T) {
	s := NewLocalStore(WithQuota(10))

	require.NoError(t, s.SetItem("a", []byte("12345")))
	require.NoError(t, s.SetItem("a", []byte("1234567890")))

	err := s.SetItem("b", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	require.NoError(t, s.RemoveItem("a"))
	require.NoError(t, s.SetItem("b", []byte("x")))
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("a"))
}
