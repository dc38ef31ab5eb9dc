package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"reimdesk/internal/models"
	"reimdesk/internal/processor"
	"reimdesk/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExportService struct {
	db        *gorm.DB
	store     *storage.Store
	projects  *ProjectService
	templates *TemplateService
	log       *zap.Logger
}

func NewExportService(db *gorm.DB, store *storage.Store, projects *ProjectService, templates *TemplateService, log *zap.Logger) *ExportService {
	return &ExportService{db: db, store: store, projects: projects, templates: templates, log: log}
}

// ExportProject packs the project's manifest and every referenced file
// (watermarked siblings included) into a zip archive at outPath, then marks
// the project exported.
func (s *ExportService) ExportProject(projectID, outPath string) error {
	project, err := s.projects.Get(projectID)
	if err != nil {
		return err
	}
	template, err := s.templates.Get(project.TemplateID)
	if err != nil {
		return err
	}

	manifest := ProjectManifest{
		Version:    ManifestVersion,
		ExportTime: nowMillis(),
		Project: ManifestProject{
			Name:     project.Name,
			Creator:  project.Creator,
			Metadata: project.Metadata,
		},
		Template: manifestTemplate(template),
	}

	archive, err := processor.NewArchive(outPath)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			archive.Close()
			os.Remove(outPath)
		}
	}()

	for _, item := range project.Items {
		entry := ManifestItem{ItemName: item.TemplateItem.Name}
		for _, attachment := range item.Attachments {
			file := ManifestFile{
				OriginalName: attachment.OriginalName,
				FileName:     attachment.FileName,
				HasWatermark: attachment.HasWatermark,
				Expenditure:  attachment.Metadata["expenditure"],
			}
			if err := archive.AddFile(path.Join("files", entry.ItemName, attachment.FileName), s.store.Abs(attachment.FilePath)); err != nil {
				return err
			}
			if attachment.HasWatermark && attachment.WatermarkedPath != "" && s.store.Exists(attachment.WatermarkedPath) {
				wmName := processor.WatermarkName(attachment.FileName)
				file.WatermarkedFileName = wmName
				if err := archive.AddFile(path.Join("files", entry.ItemName, wmName), s.store.Abs(attachment.WatermarkedPath)); err != nil {
					return err
				}
			}
			entry.Files = append(entry.Files, file)
		}
		manifest.Items = append(manifest.Items, entry)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := archive.AddBytes("manifest.json", data); err != nil {
		return err
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	success = true

	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).
		Update("status", models.ProjectStatusExported).Error; err != nil {
		return fmt.Errorf("failed to mark project exported: %w", err)
	}
	return nil
}

// ExportTemplate writes a single template's manifest JSON to outPath.
func (s *ExportService) ExportTemplate(templateID, outPath string) error {
	template, err := s.templates.Get(templateID)
	if err != nil {
		return err
	}
	manifest := TemplateManifest{
		Version:    ManifestVersion,
		ExportTime: nowMillis(),
		Template:   manifestTemplate(template),
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ExportTemplates packs one JSON manifest per template plus a summary.json
// into a zip archive.
func (s *ExportService) ExportTemplates(templateIDs []string, outPath string) error {
	archive, err := processor.NewArchive(outPath)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if !success {
			archive.Close()
			os.Remove(outPath)
		}
	}()

	summary := BatchSummary{Version: ManifestVersion, ExportTime: nowMillis()}
	used := map[string]bool{"summary.json": true}

	for _, id := range templateIDs {
		template, err := s.templates.Get(id)
		if err != nil {
			return err
		}
		manifest := TemplateManifest{
			Version:    ManifestVersion,
			ExportTime: summary.ExportTime,
			Template:   manifestTemplate(template),
		}
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		if err := archive.AddBytes(entryName(template.Name, used), data); err != nil {
			return err
		}
		summary.Templates = append(summary.Templates, SummaryEntry{
			Name:      template.Name,
			Creator:   template.Creator,
			ItemCount: len(template.Items),
		})
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := archive.AddBytes("summary.json", data); err != nil {
		return err
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	success = true
	return nil
}

// entryName picks a unique archive entry name for a template manifest.
func entryName(templateName string, used map[string]bool) string {
	base := templateName
	if base == "" {
		base = "template"
	}
	name := base + ".json"
	for n := 1; used[name]; n++ {
		name = fmt.Sprintf("%s (%d).json", base, n)
	}
	used[name] = true
	return name
}
