package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/storagetest"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

func TestStore(t *testing.T) {
	storagetest.RunLocalStore(t, func(t *testing.T) driven.LocalStore {
		s, err := NewStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestStore_Quota(t *testing.T) {
	s, err := NewStore(t.TempDir(), WithQuota(10))
	require.NoError(t, err)

	require.NoError(t, s.SetItem("a", []byte("123456")))
	err = s.SetItem("b", []byte("12345"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	_, err = s.GetItem("b")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Replacing a key only counts its new size.
	require.NoError(t, s.SetItem("a", []byte("1234567890")))

	require.NoError(t, s.RemoveItem("a"))
	require.NoError(t, s.SetItem("b", []byte("12345")))

	used, err := s.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(5), used)
}

func TestStore_NoQuota(t *testing.T) {
	s, err := NewStore(t.TempDir(), WithQuota(0))
	require.NoError(t, err)

	require.NoError(t, s.SetItem("big", make([]byte, DefaultQuota+1)))
}

func TestStore_PersistsToDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.Dir())

	require.NoError(t, s.SetItem(domain.KeyEmergencySave, []byte(`{"x":1}`)))

	raw, err := os.ReadFile(filepath.Join(dir, domain.KeyEmergencySave))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(raw))

	_, err = os.Stat(filepath.Join(dir, domain.KeyEmergencySave+".tmp"))
	assert.True(t, os.IsNotExist(err))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	got, err := reopened.GetItem(domain.KeyEmergencySave)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(got))
}

func TestStore_InvalidKeys(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetItem("../x", []byte("1")), domain.ErrInvalidInput)
	_, err = s.GetItem("../x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, s.RemoveItem("../x"))
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	_, err := NewStore("/dev/null/local")
	assert.Error(t, err)
}
