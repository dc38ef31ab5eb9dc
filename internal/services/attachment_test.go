package services

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"reimdesk/internal/models"
	"reimdesk/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFlipsItemToUploaded(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Invoice")

	attachment, err := f.attachments.Upload(item.ID, "hotel invoice.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	assert.Equal(t, "hotel invoice.png", attachment.OriginalName)
	assert.Equal(t, ".png", attachment.FileExt)
	assert.NotEqual(t, attachment.OriginalName, attachment.FileName, "stored name is generated")
	assert.False(t, filepath.IsAbs(attachment.FilePath), "paths are stored relative to the root")
	assert.True(t, f.store.Exists(attachment.FilePath))

	var updated models.ProjectItem
	require.NoError(t, f.db.First(&updated, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusUploaded, updated.Status)
	require.NotNil(t, updated.UploadedAt)
}

func TestDeleteLastAttachmentResetsItem(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Invoice")

	first, err := f.attachments.Upload(item.ID, "a.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)
	second, err := f.attachments.Upload(item.ID, "b.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	require.NoError(t, f.attachments.Delete(first.ID))
	var updated models.ProjectItem
	require.NoError(t, f.db.First(&updated, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusUploaded, updated.Status, "item keeps its status while files remain")

	require.NoError(t, f.attachments.Delete(second.ID))
	require.NoError(t, f.db.First(&updated, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusPending, updated.Status)
	assert.Nil(t, updated.UploadedAt)
	assert.False(t, f.store.Exists(second.FilePath))
}

func TestUploadRejectsDisallowedExtension(t *testing.T) {
	f := newFixture(t)
	template, err := f.templates.Create(TemplateInput{
		Name:  "Strict",
		Items: []TemplateItemInput{{Name: "Scan", FileTypes: []string{"pdf", ".PNG"}, AllowsMultipleFiles: true}},
	})
	require.NoError(t, err)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Scan")

	_, err = f.attachments.Upload(item.ID, "notes.txt", strings.NewReader("notes"), false)
	require.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = f.attachments.Upload(item.ID, "scan.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err, "allowed types match case and dot insensitively")
}

func TestSingleFileItemRejectsSecondUpload(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Receipt")

	_, err := f.attachments.Upload(item.ID, "receipt.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	_, err = f.attachments.Upload(item.ID, "another.png", bytes.NewReader(testPNG(t)), false)
	require.ErrorIs(t, err, ErrSingleFileItem)
}

func TestSetMetadata(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Invoice")

	attachment, err := f.attachments.Upload(item.ID, "invoice.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	updated, err := f.attachments.SetMetadata(attachment.ID, map[string]string{"expenditure": "128.50"})
	require.NoError(t, err)
	assert.Equal(t, "128.50", updated.Metadata["expenditure"])
}

func TestMigrateStorageRootKeepsFilesReachable(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Invoice")

	attachment, err := f.attachments.Upload(item.ID, "invoice.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)
	oldAbs := f.store.Abs(attachment.FilePath)

	newRoot := filepath.Join(t.TempDir(), "moved")
	require.NoError(t, f.settings.MigrateStorageRoot(newRoot))

	assert.Equal(t, newRoot, f.store.Root())
	assert.Equal(t, newRoot, f.settings.StorageRoot())
	assert.True(t, f.store.Exists(attachment.FilePath), "relative path resolves under the new root")
	assert.NotEqual(t, oldAbs, f.store.Abs(attachment.FilePath))

	// The row itself is untouched by the migration.
	got, err := f.attachments.Get(attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, attachment.FilePath, got.FilePath)
}

func TestSaveSignature(t *testing.T) {
	f := newFixture(t)

	_, err := f.attachments.SaveSignature("sig.gif", strings.NewReader("gif"))
	require.ErrorIs(t, err, ErrUnsupportedFileType)

	rel, err := f.attachments.SaveSignature("sig.png", bytes.NewReader(testPNG(t)))
	require.NoError(t, err)
	assert.Equal(t, storage.SignaturePath("signature.png"), rel)
	assert.True(t, f.store.Exists(rel))

	stored, _ := f.settings.SignatureImage()
	assert.Equal(t, rel, stored)
}
