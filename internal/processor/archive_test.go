package processor

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	payload := filepath.Join(dir, "payload.txt")
	require.NoError(t, os.WriteFile(payload, []byte("payload content"), 0644))

	archivePath := filepath.Join(dir, "out.zip")
	archive, err := NewArchive(archivePath)
	require.NoError(t, err)
	require.NoError(t, archive.AddBytes("manifest.json", []byte(`{"version":"1.0"}`)))
	require.NoError(t, archive.AddFile("files/Invoice/payload.txt", payload))
	require.NoError(t, archive.Close())

	dest := filepath.Join(dir, "unpacked")
	require.NoError(t, Unpack(archivePath, dest))

	data, err := os.ReadFile(filepath.Join(dest, "manifest.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0"}`, string(data))

	data, err = os.ReadFile(filepath.Join(dest, "files", "Invoice", "payload.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload content", string(data))
}

func TestUnpackRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")

	out, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	dest := filepath.Join(dir, "unpacked")
	err = Unpack(archivePath, dest)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
