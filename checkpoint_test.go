package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreLoadAbsentFile(t *testing.T) {
	store := NewFileCheckpointStore(t.TempDir())

	checkpoint, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "", checkpoint.CurrentPage)
	assert.Empty(t, checkpoint.ProcessedURLs)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileCheckpointStore(dir)

	checkpoint := NewCheckpoint()
	checkpoint.MarkProcessed("https://example.com/blog/post-one/")
	checkpoint.AdvancePage("https://example.com/contributors/someone/2/")
	require.NoError(t, store.Save(checkpoint))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/contributors/someone/2/", loaded.CurrentPage)
	assert.True(t, loaded.Processed("https://example.com/blog/post-one/"))
	assert.False(t, loaded.Processed("https://example.com/blog/post-two/"))
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileCheckpointStore(dir)
	require.NoError(t, store.Save(NewCheckpoint()))

	_, err := os.Stat(filepath.Join(dir, checkpointFilename))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, checkpointFilename+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, checkpointFilename), []byte("{not json"), 0644))

	_, err := NewFileCheckpointStore(dir).Load()

	assert.Error(t, err)
}

func TestMarkProcessedIsIdempotent(t *testing.T) {
	checkpoint := NewCheckpoint()
	checkpoint.MarkProcessed("https://example.com/blog/post-one/")
	checkpoint.MarkProcessed("https://example.com/blog/post-one/")

	assert.Len(t, checkpoint.ProcessedURLs, 1)
	assert.True(t, checkpoint.Processed("https://example.com/blog/post-one/"))
}
