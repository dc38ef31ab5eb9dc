package services

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"reimdesk/internal/models"
	"reimdesk/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWatermarkText(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	got := ResolveWatermarkText("{userName} - {itemName} ({date})", "Alice", "Receipt", "Berlin Trip", now)
	assert.Equal(t, "Alice - Receipt (2026-03-14)", got)

	got = ResolveWatermarkText("", "Alice", "Receipt", "Berlin Trip", now)
	assert.Equal(t, "Alice - Berlin Trip", got, "empty template falls back to creator and project")

	got = ResolveWatermarkText("reimbursed {projectName}", "Alice", "Receipt", "Berlin Trip", now)
	assert.Equal(t, "reimbursed Berlin Trip", got)
}

func TestApplyWatermarkToImage(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Receipt")

	attachment, err := f.attachments.Upload(item.ID, "receipt.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	stamped, err := f.watermarks.Apply(attachment.ID, "", nil)
	require.NoError(t, err)

	assert.True(t, stamped.HasWatermark)
	require.NotEmpty(t, stamped.WatermarkedPath)
	assert.True(t, strings.Contains(stamped.WatermarkedPath, "/watermarked/"))
	assert.True(t, strings.HasSuffix(stamped.WatermarkedPath, "_wm.png"))
	assertMagic(t, f, stamped.WatermarkedPath, pngMagic)
	assert.True(t, f.store.Exists(attachment.FilePath), "original is never touched")

	var updated models.ProjectItem
	require.NoError(t, f.db.First(&updated, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusWatermarked, updated.Status)
}

func TestApplyWatermarkWithStyleOverride(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Invoice")

	attachment, err := f.attachments.Upload(item.ID, "invoice.jpg", jpegReader(t), false)
	require.NoError(t, err)

	override := &processor.Style{Position: "10%/90%", Opacity: 0.8, FontWeight: "bold"}
	stamped, err := f.watermarks.Apply(attachment.ID, "PAID", override)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stamped.WatermarkedPath, "_wm.jpg"))
	assertMagic(t, f, stamped.WatermarkedPath, jpegMagic)
}

var (
	jpegMagic = []byte{0xff, 0xd8}
	pngMagic  = []byte{0x89, 0x50, 0x4e, 0x47}
)

// assertMagic checks that the stored file really carries the encoding its
// extension promises.
func assertMagic(t *testing.T, f *fixture, rel string, magic []byte) {
	t.Helper()
	data, err := os.ReadFile(f.store.Abs(rel))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), len(magic))
	assert.Equal(t, magic, data[:len(magic)])
}

func TestApplyRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Invoice")

	attachment, err := f.attachments.Upload(item.ID, "notes.txt", strings.NewReader("notes"), false)
	require.NoError(t, err)

	_, err = f.watermarks.Apply(attachment.ID, "", nil)
	require.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestApplyFailsWhenSourceFileMissing(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Receipt")

	attachment, err := f.attachments.Upload(item.ID, "receipt.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(attachment.FilePath))

	_, err = f.watermarks.Apply(attachment.ID, "", nil)
	require.ErrorIs(t, err, ErrMissingSourceFile)
}

func TestClearWatermark(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)
	item := itemByName(t, project, "Receipt")

	attachment, err := f.attachments.Upload(item.ID, "receipt.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)
	stamped, err := f.watermarks.Apply(attachment.ID, "", nil)
	require.NoError(t, err)
	require.True(t, f.store.Exists(stamped.WatermarkedPath))

	cleared, err := f.watermarks.Clear(attachment.ID)
	require.NoError(t, err)
	assert.False(t, cleared.HasWatermark)
	assert.Empty(t, cleared.WatermarkedPath)
	assert.False(t, f.store.Exists(stamped.WatermarkedPath))

	var updated models.ProjectItem
	require.NoError(t, f.db.First(&updated, "id = ?", item.ID).Error)
	assert.Equal(t, models.ItemStatusUploaded, updated.Status)
}

func TestAutoWatermarkOnUpload(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.settings.Set(models.SettingAutoWatermark, "true"))
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)

	receipt := itemByName(t, project, "Receipt")
	attachment, err := f.attachments.Upload(receipt.ID, "receipt.png", bytes.NewReader(testPNG(t)), true)
	require.NoError(t, err)
	assert.True(t, attachment.HasWatermark)
	assert.True(t, f.store.Exists(attachment.WatermarkedPath))

	// Items that do not ask for a watermark are left alone.
	invoice := itemByName(t, project, "Invoice")
	plain, err := f.attachments.Upload(invoice.ID, "invoice.png", bytes.NewReader(testPNG(t)), true)
	require.NoError(t, err)
	assert.False(t, plain.HasWatermark)
}
