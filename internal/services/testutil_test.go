package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"reimdesk/internal"
	"reimdesk/internal/models"
	"reimdesk/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	store       *storage.Store
	settings    *SettingsService
	templates   *TemplateService
	projects    *ProjectService
	watermarks  *WatermarkService
	attachments *AttachmentService
	exports     *ExportService
	imports     *ImportService
	printing    *PrintService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, internal.Migrate(db), "migrate")

	root := t.TempDir()
	store, err := storage.NewStore(root)
	require.NoError(t, err, "open store")

	log := zap.NewNop()
	settings := NewSettingsService(db, store, root)
	templates := NewTemplateService(db, log)
	projects := NewProjectService(db, store, log)
	watermarks := NewWatermarkService(db, store, settings, log)
	attachments := NewAttachmentService(db, store, settings, watermarks, log)

	return &fixture{
		db:          db,
		store:       store,
		settings:    settings,
		templates:   templates,
		projects:    projects,
		watermarks:  watermarks,
		attachments: attachments,
		exports:     NewExportService(db, store, projects, templates, log),
		imports:     NewImportService(db, store, templates, projects, attachments, log),
		printing:    NewPrintService(db, store, projects, log),
	}
}

// seedTemplate creates a template with an unrestricted multi-file item and a
// required single-file item carrying a watermark text template.
func seedTemplate(t *testing.T, f *fixture) *models.Template {
	t.Helper()
	template, err := f.templates.Create(TemplateInput{
		Name:    "Travel Reimbursement",
		Creator: "Alice",
		Items: []TemplateItemInput{
			{Name: "Invoice", IsRequired: true, AllowsMultipleFiles: true, DisplayOrder: 1},
			{
				Name:                "Receipt",
				IsRequired:          true,
				NeedsWatermark:      true,
				WatermarkTemplate:   "{userName} - {itemName} ({date})",
				AllowsMultipleFiles: false,
				DisplayOrder:        2,
			},
		},
	})
	require.NoError(t, err, "seed template")
	return template
}

func seedProject(t *testing.T, f *fixture, templateID string) *models.Project {
	t.Helper()
	project, err := f.projects.CreateFromTemplate(templateID, "Berlin Trip", "Alice", map[string]any{"trip": "berlin"})
	require.NoError(t, err, "seed project")
	return project
}

func itemByName(t *testing.T, project *models.Project, name string) models.ProjectItem {
	t.Helper()
	for _, item := range project.Items {
		if item.TemplateItem.Name == name {
			return item
		}
	}
	t.Fatalf("project has no item %q", name)
	return models.ProjectItem{}
}

func jpegReader(t *testing.T) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for i := range img.Pix {
		img.Pix[i] = 0x90
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil), "encode jpeg")
	return bytes.NewReader(buf.Bytes())
}

// testPNG renders a small solid image usable as a real attachment payload.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for i := range img.Pix {
		img.Pix[i] = 0xe0
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "encode png")
	return buf.Bytes()
}
