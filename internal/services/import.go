package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reimdesk/internal/models"
	"reimdesk/internal/processor"
	"reimdesk/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImportService struct {
	db          *gorm.DB
	store       *storage.Store
	templates   *TemplateService
	projects    *ProjectService
	attachments *AttachmentService
	log         *zap.Logger
}

func NewImportService(db *gorm.DB, store *storage.Store, templates *TemplateService, projects *ProjectService, attachments *AttachmentService, log *zap.Logger) *ImportService {
	return &ImportService{db: db, store: store, templates: templates, projects: projects, attachments: attachments, log: log}
}

// ImportProject unpacks a project archive, reuses a structurally equivalent
// template (or creates a disambiguated one), creates a fresh project, and
// re-uploads every bundled file through the normal attachment path. Watermark
// derivatives are copied straight into watermarked/ and registered. Per-file
// failures are logged and skipped; the import as a whole proceeds.
func (s *ImportService) ImportProject(archivePath string) (*models.Project, error) {
	staging, err := os.MkdirTemp("", "reimdesk_import_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := processor.Unpack(archivePath, staging); err != nil {
		return nil, err
	}

	manifest, err := readProjectManifest(filepath.Join(staging, "manifest.json"))
	if err != nil {
		return nil, err
	}

	template, err := s.resolveTemplate(manifest)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.CreateFromTemplate(template.ID, manifest.Project.Name, manifest.Project.Creator, manifest.Project.Metadata)
	if err != nil {
		return nil, err
	}

	itemsByName := make(map[string]models.ProjectItem, len(project.Items))
	for _, item := range project.Items {
		itemsByName[item.TemplateItem.Name] = item
	}

	for _, entry := range manifest.Items {
		item, ok := itemsByName[entry.ItemName]
		if !ok {
			s.log.Warn("manifest item has no matching template item",
				zap.String("item", entry.ItemName))
			continue
		}
		for _, file := range entry.Files {
			if err := s.importFile(project, item, entry.ItemName, file, staging); err != nil {
				s.log.Warn("skipping file during project import",
					zap.String("item", entry.ItemName),
					zap.String("file", file.OriginalName),
					zap.Error(err))
			}
		}
	}

	return s.projects.Get(project.ID)
}

func (s *ImportService) importFile(project *models.Project, item models.ProjectItem, itemName string, file ManifestFile, staging string) error {
	src, err := os.Open(filepath.Join(staging, "files", itemName, file.FileName))
	if err != nil {
		return fmt.Errorf("missing payload file: %w", err)
	}
	defer src.Close()

	attachment, err := s.attachments.Upload(item.ID, file.OriginalName, src, false)
	if err != nil {
		return err
	}

	if file.Expenditure != "" {
		if _, err := s.attachments.SetMetadata(attachment.ID, map[string]string{"expenditure": file.Expenditure}); err != nil {
			s.log.Warn("failed to keep expenditure metadata", zap.String("attachment", attachment.ID), zap.Error(err))
		}
	}

	if file.HasWatermark && file.WatermarkedFileName != "" {
		wmSrc := filepath.Join(staging, "files", itemName, file.WatermarkedFileName)
		wmName := processor.WatermarkName(attachment.FileName)
		rel := storage.ItemWatermarkedPath(project.ID, item.ID, wmName)
		if _, err := s.store.CopyIn(rel, wmSrc); err != nil {
			s.log.Warn("failed to carry over watermark derivative",
				zap.String("file", file.WatermarkedFileName), zap.Error(err))
			return nil
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			updates := map[string]any{"has_watermark": true, "watermarked_path": rel}
			if err := tx.Model(&models.Attachment{}).Where("id = ?", attachment.ID).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Model(&models.ProjectItem{}).Where("id = ?", item.ID).
				Update("status", models.ItemStatusWatermarked).Error
		})
		if err != nil {
			return fmt.Errorf("failed to register watermark derivative: %w", err)
		}
	}
	return nil
}

// resolveTemplate reuses an existing template iff one under the manifest name
// (or a previously disambiguated variant of it) is structurally equivalent;
// otherwise it creates a new template under the smallest free name.
func (s *ImportService) resolveTemplate(manifest *ProjectManifest) (*models.Template, error) {
	desired := itemsFromManifest(manifest.Template.Items, "")

	var candidates []models.Template
	err := s.db.Preload("Items").
		Where("name = ? OR name LIKE ?", manifest.Template.Name, manifest.Template.Name+" (%").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up templates: %w", err)
	}
	for i := range candidates {
		if EquivalentItems(candidates[i].Items, desired) {
			return &candidates[i], nil
		}
	}

	name, err := s.templates.UniqueName(manifest.Template.Name)
	if err != nil {
		return nil, err
	}
	template := &models.Template{
		ID:          uuid.New().String(),
		Name:        name,
		Description: manifest.Template.Description,
		Creator:     manifest.Project.Creator,
		Items:       itemsFromManifest(manifest.Template.Items, ""),
	}
	for i := range template.Items {
		template.Items[i].TemplateID = template.ID
	}
	if err := s.db.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

// ImportTemplate reads a single template manifest; the name collision is
// resolved with the usual suffix scheme.
func (s *ImportService) ImportTemplate(manifestPath string) (*models.Template, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return s.importTemplateManifest(data)
}

func (s *ImportService) importTemplateManifest(data []byte) (*models.Template, error) {
	var manifest TemplateManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, manifest.Version)
	}
	if manifest.Template.Name == "" {
		return nil, fmt.Errorf("manifest has no template name")
	}

	name, err := s.templates.UniqueName(manifest.Template.Name)
	if err != nil {
		return nil, err
	}
	template := &models.Template{
		ID:          uuid.New().String(),
		Name:        name,
		Description: manifest.Template.Description,
		Creator:     manifest.Template.Creator,
		Items:       itemsFromManifest(manifest.Template.Items, ""),
	}
	for i := range template.Items {
		template.Items[i].TemplateID = template.ID
	}
	if err := s.db.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

// ImportTemplates treats every top-level JSON entry of the archive except
// summary.json as an independent template. Per-entry failures are logged and
// skipped; the batch succeeds if at least one template imported.
func (s *ImportService) ImportTemplates(archivePath string) ([]models.Template, error) {
	staging, err := os.MkdirTemp("", "reimdesk_import_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := processor.Unpack(archivePath, staging); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	var imported []models.Template
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == "summary.json" || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		template, err := s.ImportTemplate(filepath.Join(staging, entry.Name()))
		if err != nil {
			s.log.Warn("skipping template during batch import",
				zap.String("entry", entry.Name()), zap.Error(err))
			continue
		}
		imported = append(imported, *template)
	}

	if len(imported) == 0 {
		return nil, fmt.Errorf("no template could be imported from the archive")
	}
	return imported, nil
}

func readProjectManifest(path string) (*ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingManifest
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var manifest ProjectManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, manifest.Version)
	}
	return &manifest, nil
}
