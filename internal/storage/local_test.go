package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rel := ItemOriginalPath("p1", "i1", "file.txt")
	size, err := store.Save(rel, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.True(t, store.Exists(rel))

	f, err := store.Open(rel)
	require.NoError(t, err)
	data := make([]byte, 5)
	_, err = f.Read(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(rel))
	assert.False(t, store.Exists(rel))
}

func TestRemoveAllClearsSubtree(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(ItemOriginalPath("p1", "i1", "a.txt"), strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.Save(ItemWatermarkedPath("p1", "i1", "a_wm.txt"), strings.NewReader("b"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveAll("p1"))
	assert.False(t, store.Exists(ItemOriginalPath("p1", "i1", "a.txt")))
	_, statErr := os.Stat(filepath.Join(store.Root(), "p1"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMigrateRootMovesTree(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	rel := ProjectDocumentPath("p1", "doc.pdf")
	_, err = store.Save(rel, strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	oldRoot := store.Root()

	newRoot := filepath.Join(t.TempDir(), "nested", "root")
	require.NoError(t, store.MigrateRoot(newRoot))

	assert.Equal(t, newRoot, store.Root())
	assert.True(t, store.Exists(rel))
	_, statErr := os.Stat(filepath.Join(oldRoot, "p1"))
	assert.True(t, os.IsNotExist(statErr), "old tree is drained")

	// Migrating to the current root is a no-op.
	require.NoError(t, store.MigrateRoot(newRoot))
}

func TestRelativePathBuilders(t *testing.T) {
	assert.Equal(t, "p1/items/i1/original/f.png", ItemOriginalPath("p1", "i1", "f.png"))
	assert.Equal(t, "p1/items/i1/watermarked/f_wm.png", ItemWatermarkedPath("p1", "i1", "f_wm.png"))
	assert.Equal(t, "p1/documents/d.pdf", ProjectDocumentPath("p1", "d.pdf"))
	assert.Equal(t, "user/signature/sig.png", SignaturePath("sig.png"))
}
