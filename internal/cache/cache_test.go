package cache

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry(t *testing.T) {
	data := json.RawMessage(`{"foo":"bar"}`)
	entry := NewEntry("test-key", data, 60)

	assert.Equal(t, "test-key", entry.Key)
	assert.Equal(t, data, entry.Data)
	assert.False(t, entry.IsExpired())
	assert.Greater(t, entry.TimeUntilExpiration(), time.Duration(0))
	assert.LessOrEqual(t, entry.Age(), time.Second)

	t.Run("Expiration", func(t *testing.T) {
		e := NewEntry("k", data, 60)
		e.ExpiresAt = time.Now().Add(-time.Second)
		assert.True(t, e.IsExpired())
		assert.Equal(t, time.Duration(0), e.TimeUntilExpiration())
	})

	t.Run("JSON", func(t *testing.T) {
		encoded, err := json.Marshal(entry)
		require.NoError(t, err)

		var decoded Entry
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, entry.Key, decoded.Key)
		assert.Equal(t, entry.TTLSeconds, decoded.TTLSeconds)
		assert.Equal(t, entry.CreatedAt.Format(time.RFC3339), decoded.CreatedAt.Format(time.RFC3339))
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "carbonkit:flight|1|2", Key("carbonkit", "flight", "1", "2"))
	assert.Len(t, HashKey("anything/with:odd\\chars"), 64)
	assert.Equal(t, HashKey("a"), HashKey("a"))
	assert.NotEqual(t, HashKey("a"), HashKey("b"))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), true, 60)
	require.NoError(t, err)

	t.Run("SetGet", func(t *testing.T) {
		require.NoError(t, store.Set("k1", json.RawMessage(`{"v":1}`)))
		entry, getErr := store.Get("k1")
		require.NoError(t, getErr)
		assert.JSONEq(t, `{"v":1}`, string(entry.Data))
	})

	t.Run("Missing", func(t *testing.T) {
		_, getErr := store.Get("missing")
		require.ErrorIs(t, getErr, ErrCacheNotFound)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, getErr := store.Get("")
		require.ErrorIs(t, getErr, ErrInvalidCacheKey)
		require.ErrorIs(t, store.Set("", nil), ErrInvalidCacheKey)
	})

	t.Run("Expired", func(t *testing.T) {
		require.NoError(t, store.SetWithTTL("stale", json.RawMessage(`1`), -1))
		_, getErr := store.Get("stale")
		require.ErrorIs(t, getErr, ErrCacheExpired)
		_, getErr = store.Get("stale")
		require.ErrorIs(t, getErr, ErrCacheNotFound, "expired entry is removed on read")
	})

	t.Run("JSONAndBlob", func(t *testing.T) {
		type payload struct{ Name string }
		require.NoError(t, store.SetJSON("json", payload{Name: "x"}))
		var got payload
		require.NoError(t, store.GetJSON("json", &got))
		assert.Equal(t, "x", got.Name)

		blob := []byte("%PDF-1.3\x00\xff")
		require.NoError(t, store.SetBlob("blob", blob))
		gotBlob, blobErr := store.GetBlob("blob")
		require.NoError(t, blobErr)
		assert.Equal(t, blob, gotBlob)
	})

	t.Run("DeleteCleanupClear", func(t *testing.T) {
		require.NoError(t, store.Delete("k1"))
		require.NoError(t, store.Delete("k1"))

		require.NoError(t, store.SetWithTTL("old", json.RawMessage(`1`), -1))
		require.NoError(t, store.Set("fresh", json.RawMessage(`1`)))
		require.NoError(t, store.CleanupExpired())
		_, getErr := store.Get("fresh")
		require.NoError(t, getErr)

		require.NoError(t, store.Clear())
		n, countErr := store.Count()
		require.NoError(t, countErr)
		assert.Equal(t, 0, n)
	})
}

func TestFileStore_Disabled(t *testing.T) {
	store, err := NewFileStore("", false, 0)
	require.NoError(t, err)
	assert.False(t, store.IsEnabled())

	_, err = store.Get("k")
	require.ErrorIs(t, err, ErrCacheDisabled)
	require.ErrorIs(t, store.Set("k", nil), ErrCacheDisabled)
}

func TestNewFileStore_Errors(t *testing.T) {
	_, err := NewFileStore("", true, 60)
	require.Error(t, err)

	_, err = NewFileStore(t.TempDir(), true, 0)
	require.Error(t, err)
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/cache"
	store, err := NewFileStore(dir, true, 60)
	require.NoError(t, err)
	assert.Equal(t, dir, store.GetDirectory())
	assert.Equal(t, 60, store.GetTTL())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
