package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/repositories"
	"github.com/dmitrijs2005/studysync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/studysync/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealedStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repos, err := repositories.InitDatabase(ctx, filepath.Join(dir, "studysync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	key, err := cryptox.LoadDeviceKey(filepath.Join(dir, "device.key"))
	require.NoError(t, err)

	store := NewSealedStore(repos.DB, repos.Metadata, key)
	store.now = func() time.Time { return time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC) }

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Save(ctx, "refresh-abc"))

	raw, err := repos.Metadata.Get(ctx, refreshTokenKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "refresh-abc")

	tok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-abc", tok)

	at, ok, err := store.SavedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC), at)

	// a different device key cannot open it and the value is dropped
	other := NewSealedStore(repos.DB, repos.Metadata, cryptox.DeriveKey([]byte("other"), []byte("salt-salt-salt-s")))
	tok, err = other.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	raw, err = repos.Metadata.Get(ctx, refreshTokenKey)
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, store.Save(ctx, "again"))
	require.NoError(t, store.Clear(ctx))
	tok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
	_, ok, err = store.SavedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

type countingRepo struct {
	metadata.Repository
	gets []string
}

func (c *countingRepo) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets = append(c.gets, key)
	return c.Repository.Get(ctx, key)
}

func TestSealedStore_ReadsThroughRepository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repos, err := repositories.InitDatabase(ctx, filepath.Join(dir, "studysync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	repo := &countingRepo{Repository: repos.Metadata}
	store := NewSealedStore(repos.DB, repo, cryptox.DeriveKey([]byte("device"), []byte("salt-salt-salt-s")))
	require.NoError(t, store.Save(ctx, "refresh-xyz"))
	assert.Empty(t, repo.gets)

	tok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-xyz", tok)
	_, ok, err := store.SavedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{refreshTokenKey, savedAtKey}, repo.gets)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var m MemoryStore
	require.NoError(t, m.Save(ctx, "x"))
	tok, _ := m.Load(ctx)
	assert.Equal(t, "x", tok)
	require.NoError(t, m.Clear(ctx))
	tok, _ = m.Load(ctx)
	assert.Empty(t, tok)
}
