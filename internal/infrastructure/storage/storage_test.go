package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/paths"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()

	file, err := NewFile(t.TempDir())
	require.NoError(t, err)

	bdg, err := NewBadger(BadgerConfig{InMemory: true}, logging.NewNop())
	require.NoError(t, err)

	lite, err := NewSQLite(":memory:")
	require.NoError(t, err)

	kvs := map[string]KV{
		"memory": NewMemory(),
		"file":   file,
		"badger": bdg,
		"sqlite": lite,
	}
	t.Cleanup(func() {
		for _, kv := range kvs {
			_ = kv.Close()
		}
	})
	return kvs
}

func TestContract(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "android_emulator_state_v1")
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, kv.Set(ctx, "android_emulator_state_v1", []byte(`{"booted":true}`)))
			got, err := kv.Get(ctx, "android_emulator_state_v1")
			require.NoError(t, err)
			assert.Equal(t, `{"booted":true}`, string(got))

			require.NoError(t, kv.Set(ctx, "android_emulator_state_v1", []byte(`{"booted":false}`)))
			got, err = kv.Get(ctx, "android_emulator_state_v1")
			require.NoError(t, err)
			assert.Equal(t, `{"booted":false}`, string(got))

			require.NoError(t, kv.Delete(ctx, "android_emulator_state_v1"))
			_, err = kv.Get(ctx, "android_emulator_state_v1")
			assert.True(t, errors.Is(err, ErrNotFound))

			// deleting twice is fine
			assert.NoError(t, kv.Delete(ctx, "android_emulator_state_v1"))
		})
	}
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, kv.Set(ctx, "k", []byte(fmt.Sprintf("v%02d", i))))
				}(i)
			}
			wg.Wait()

			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Len(t, got, 3)
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "a/b key", []byte("v")))

	second, err := NewFile(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "a/b key")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSQLitePersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestOpen(t *testing.T) {
	kv, err := Open(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Open(Config{Backend: BackendBadger}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Badger{}, kv)
	require.NoError(t, kv.Close())

	kv, err = Open(Config{Backend: BackendSQLite}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, kv)
	require.NoError(t, kv.Close())

	_, err = Open(Config{Backend: BackendFile}, nil)
	assert.Error(t, err)

	_, err = Open(Config{Backend: "redis"}, nil)
	assert.Error(t, err)
}

func TestOpenUsesDataLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	for _, backend := range []string{BackendFile, BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			kv, err := Open(Config{Backend: backend, Path: root}, logging.NewNop())
			require.NoError(t, err)
			require.NoError(t, kv.Set(ctx, "k", []byte(backend)))
			require.NoError(t, kv.Close())

			kv, err = Open(Config{Backend: backend, Path: root}, logging.NewNop())
			require.NoError(t, err)
			defer kv.Close()

			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, backend, string(got))
		})
	}

	layout := paths.Layout{Root: root}
	for _, p := range []string{layout.Snapshots(), layout.Badger(), layout.SQLite()} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}
