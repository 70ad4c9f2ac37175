package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// testBlobStore runs the behaviour every domain.BlobStore shares
func testBlobStore(t *testing.T, store domain.BlobStore) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrBlobNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "list", []byte(`[{"sku":"1"}]`)))

		data, err := store.Get(ctx, "list")
		require.NoError(t, err)
		assert.Equal(t, `[{"sku":"1"}]`, string(data))
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "list", []byte("first")))
		require.NoError(t, store.Put(ctx, "list", []byte("second")))

		data, err := store.Get(ctx, "list")
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "a", []byte("A")))
		require.NoError(t, store.Put(ctx, "b/with slash", []byte("B")))

		a, err := store.Get(ctx, "a")
		require.NoError(t, err)
		b, err := store.Get(ctx, "b/with slash")
		require.NoError(t, err)
		assert.Equal(t, "A", string(a))
		assert.Equal(t, "B", string(b))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "gone", []byte("x")))
		require.NoError(t, store.Delete(ctx, "gone"))

		_, err := store.Get(ctx, "gone")
		assert.ErrorIs(t, err, domain.ErrBlobNotFound)

		// deleting again is not an error
		assert.NoError(t, store.Delete(ctx, "gone"))
	})
}

func TestMemoryStore(t *testing.T) {
	testBlobStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'Y'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, 1, store.Size())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "dir"))
	require.NoError(t, err)

	testBlobStore(t, store)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "export_list", []byte("[]")))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	data, err := second.Get(ctx, "export_list")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = os.Stat(filepath.Join(dir, "export_list.json"))
	assert.NoError(t, err)
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("SKUAPP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SKUAPP_TEST_REDIS_URL not set")
	}

	store, err := NewRedisStoreFromURL(context.Background(), url, "sku-app-test:")
	require.NoError(t, err)
	defer store.Close()

	testBlobStore(t, store)
}

func TestNewRedisStoreFromURL_InvalidURL(t *testing.T) {
	_, err := NewRedisStoreFromURL(context.Background(), "not a url", "")
	assert.Error(t, err)
}
