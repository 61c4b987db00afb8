package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore_WriteAndDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "profile-pics", "a.png", []byte("png-bytes")))

	data, err := os.ReadFile(filepath.Join(store.Root(), "profile-pics", "a.png"))
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, store.Delete(ctx, "profile-pics", "a.png"))
	_, err = os.Stat(filepath.Join(store.Root(), "profile-pics", "a.png"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalStore_DeleteMissingIsClean(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "resumes", "never-written.pdf"))
}

func TestLocalStore_BucketsAreIsolated(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "profile-pics", "x.png", []byte("a")))
	require.NoError(t, store.Write(ctx, "resumes", "x.png", []byte("b")))

	data, err := os.ReadFile(filepath.Join(store.Root(), "resumes", "x.png"))
	require.NoError(t, err)
	require.Equal(t, []byte("b"), data)
}
