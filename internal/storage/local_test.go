package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUploadAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ctx := context.Background()

	stored, err := store.Upload(ctx, "resumes/abc.pdf", "application/pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "resumes/abc.pdf", stored)

	data, err := os.ReadFile(filepath.Join(dir, "resumes", "abc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(ctx, "resumes/abc.pdf"))
	_, err = os.Stat(filepath.Join(dir, "resumes", "abc.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreRemoveMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove(context.Background(), "resumes/nope.pdf"))
}
