package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend runs the contract every backend must satisfy.
func testBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	key := "moods-" + t.Name()

	t.Run("MissingKey", func(t *testing.T) {
		_, err := b.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SetGet", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, key, []byte(`[1]`)))
		got, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte(`[1]`), got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, key, []byte(`[1,2]`)))
		got, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte(`[1,2]`), got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, b.Delete(ctx, key))
		_, err := b.Get(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		assert.NoError(t, b.Delete(ctx, key))
	})

	t.Run("EmptyKey", func(t *testing.T) {
		assert.Error(t, b.Set(ctx, "", []byte(`x`)))
	})
}

func TestMemory(t *testing.T) {
	b := NewMemory()
	defer b.Close()
	testBackend(t, b)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	value := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'y'

	again, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFile(t *testing.T) {
	b, err := NewFile(t.TempDir())
	require.NoError(t, err)
	defer b.Close()
	testBackend(t, b)
}

func TestFileRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	b, err := NewFile(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, b.Set(ctx, "../escape", []byte("x")))
	assert.Error(t, b.Set(ctx, ".hidden", []byte("x")))
	_, err = b.Get(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, b.Set(ctx, "moods", []byte("[]")))
	require.NoError(t, b.Set(ctx, "moods", []byte("[1]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "moods.json", entries[0].Name())
}

func TestSQLite(t *testing.T) {
	b, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "moodlog.db"))
	require.NoError(t, err)
	defer b.Close()
	testBackend(t, b)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "moodlog.db")

	b, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "moods", []byte(`["kept"]`)))
	require.NoError(t, b.Close())

	b, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Get(ctx, "moods")
	require.NoError(t, err)
	assert.Equal(t, []byte(`["kept"]`), got)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("MOODLOG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MOODLOG_TEST_REDIS_ADDR not set")
	}
	b, err := NewRedis(context.Background(), addr)
	require.NoError(t, err)
	defer b.Close()
	testBackend(t, b)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("MOODLOG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MOODLOG_TEST_DATABASE_URL not set")
	}
	b, err := Open(context.Background(), Options{
		Driver:      DriverPostgres,
		DatabaseURL: url,
		Migrate:     true,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)
	defer b.Close()
	testBackend(t, b)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, b)

	b, err = Open(ctx, Options{Driver: "", DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, b)

	b, err = Open(ctx, Options{Driver: "SQLITE", SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, b)
	require.NoError(t, b.Close())

	_, err = Open(ctx, Options{Driver: "etcd"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Driver: DriverRedis})
	assert.Error(t, err)
}
