package services

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"reimdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectExportImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)

	invoice := itemByName(t, project, "Invoice")
	_, err := f.attachments.Upload(invoice.ID, "hotel.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)
	_, err = f.attachments.Upload(invoice.ID, "taxi.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	receipt := itemByName(t, project, "Receipt")
	stamped, err := f.attachments.Upload(receipt.ID, "receipt.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)
	_, err = f.attachments.SetMetadata(stamped.ID, map[string]string{"expenditure": "42.00"})
	require.NoError(t, err)
	_, err = f.watermarks.Apply(stamped.ID, "", nil)
	require.NoError(t, err)

	archive := filepath.Join(t.TempDir(), "project.zip")
	require.NoError(t, f.exports.ExportProject(project.ID, archive))

	exported, err := f.projects.Get(project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusExported, exported.Status)

	imported, err := f.imports.ImportProject(archive)
	require.NoError(t, err)
	assert.NotEqual(t, project.ID, imported.ID)
	assert.Equal(t, project.Name, imported.Name)
	assert.Equal(t, template.ID, imported.TemplateID, "structurally equivalent template is reused")

	gotInvoice := itemByName(t, imported, "Invoice")
	require.Len(t, gotInvoice.Attachments, 2)
	names := []string{gotInvoice.Attachments[0].OriginalName, gotInvoice.Attachments[1].OriginalName}
	assert.ElementsMatch(t, []string{"hotel.png", "taxi.png"}, names)

	gotReceipt := itemByName(t, imported, "Receipt")
	require.Len(t, gotReceipt.Attachments, 1)
	got := gotReceipt.Attachments[0]
	assert.Equal(t, "receipt.png", got.OriginalName)
	assert.Equal(t, "42.00", got.Metadata["expenditure"])
	assert.True(t, got.HasWatermark, "watermark derivative survives the round trip")
	assert.True(t, f.store.Exists(got.WatermarkedPath))
	assert.Equal(t, models.ItemStatusWatermarked, gotReceipt.Status)
}

func TestImportCreatesDisambiguatedTemplateOnDrift(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)
	project := seedProject(t, f, template.ID)

	invoice := itemByName(t, project, "Invoice")
	_, err := f.attachments.Upload(invoice.ID, "hotel.png", bytes.NewReader(testPNG(t)), false)
	require.NoError(t, err)

	archive := filepath.Join(t.TempDir(), "project.zip")
	require.NoError(t, f.exports.ExportProject(project.ID, archive))

	// Drift the local template so the manifest no longer matches it.
	_, err = f.templates.UpdateItem(template.Items[0].ID, TemplateItemInput{
		Name: "Invoice", Description: "changed", AllowsMultipleFiles: true, DisplayOrder: 1,
	}, false)
	require.NoError(t, err)

	imported, err := f.imports.ImportProject(archive)
	require.NoError(t, err)
	assert.NotEqual(t, template.ID, imported.TemplateID)

	created, err := f.templates.Get(imported.TemplateID)
	require.NoError(t, err)
	assert.Equal(t, "Travel Reimbursement (1)", created.Name)
}

func TestImportRejectsMissingManifestAndBadVersion(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.zip")
	writeZip(t, empty, map[string]string{"readme.txt": "nothing here"})
	_, err := f.imports.ImportProject(empty)
	require.ErrorIs(t, err, ErrMissingManifest)

	future := filepath.Join(dir, "future.zip")
	writeZip(t, future, map[string]string{"manifest.json": `{"version":"2.0"}`})
	_, err = f.imports.ImportProject(future)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestTemplateManifestRoundTrip(t *testing.T) {
	f := newFixture(t)
	template := seedTemplate(t, f)

	manifestPath := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, f.exports.ExportTemplate(template.ID, manifestPath))

	var manifest TemplateManifest
	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, ManifestVersion, manifest.Version)
	assert.Equal(t, template.Name, manifest.Template.Name)

	imported, err := f.imports.ImportTemplate(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, "Travel Reimbursement (1)", imported.Name, "name collision gets a suffix")
	require.Len(t, imported.Items, 2)
	assert.True(t, EquivalentItems(template.Items, imported.Items))
}

func TestTemplateBatchRoundTrip(t *testing.T) {
	f := newFixture(t)
	first := seedTemplate(t, f)
	second, err := f.templates.Create(TemplateInput{
		Name:  "Conference",
		Items: []TemplateItemInput{{Name: "Ticket", DisplayOrder: 1}},
	})
	require.NoError(t, err)

	archive := filepath.Join(t.TempDir(), "templates.zip")
	require.NoError(t, f.exports.ExportTemplates([]string{first.ID, second.ID}, archive))

	imported, err := f.imports.ImportTemplates(archive)
	require.NoError(t, err)
	require.Len(t, imported, 2, "summary.json is not treated as a template")

	var names []string
	for _, template := range imported {
		names = append(names, template.Name)
	}
	assert.ElementsMatch(t, []string{"Travel Reimbursement (1)", "Conference (1)"}, names)
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
}
