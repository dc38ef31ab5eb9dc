package services

import (
	"time"

	"reimdesk/internal/models"

	"github.com/google/uuid"
)

// ManifestVersion is the only archive schema version accepted on import.
const ManifestVersion = "1.0"

// ProjectManifest is the manifest.json of an exported project archive. File
// payloads sit next to it under files/<item_name>/<file_name>.
type ProjectManifest struct {
	Version    string           `json:"version"`
	ExportTime int64            `json:"export_time"` // ms epoch
	Project    ManifestProject  `json:"project"`
	Template   ManifestTemplate `json:"template"`
	Items      []ManifestItem   `json:"items"`
}

// TemplateManifest is the payload-free manifest of an exported template.
type TemplateManifest struct {
	Version    string           `json:"version"`
	ExportTime int64            `json:"export_time"`
	Template   ManifestTemplate `json:"template"`
}

// BatchSummary is the secondary manifest of a batch template export.
type BatchSummary struct {
	Version    string         `json:"version"`
	ExportTime int64          `json:"export_time"`
	Templates  []SummaryEntry `json:"templates"`
}

type SummaryEntry struct {
	Name      string `json:"name"`
	Creator   string `json:"creator,omitempty"`
	ItemCount int    `json:"item_count"`
}

type ManifestProject struct {
	Name     string         `json:"name"`
	Creator  string         `json:"creator,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type ManifestTemplate struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Creator     string                 `json:"creator,omitempty"`
	Items       []ManifestTemplateItem `json:"items"`
}

type ManifestTemplateItem struct {
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	IsRequired          bool     `json:"is_required"`
	FileTypes           []string `json:"file_types,omitempty"`
	NeedsWatermark      bool     `json:"needs_watermark"`
	WatermarkTemplate   string   `json:"watermark_template,omitempty"`
	AllowsMultipleFiles bool     `json:"allows_multiple_files"`
	DisplayOrder        int      `json:"display_order"`
	Category            string   `json:"category,omitempty"`
}

type ManifestItem struct {
	ItemName string         `json:"item_name"`
	Files    []ManifestFile `json:"files"`
}

type ManifestFile struct {
	OriginalName        string `json:"original_name"`
	FileName            string `json:"file_name"`
	HasWatermark        bool   `json:"has_watermark"`
	WatermarkedFileName string `json:"watermarked_file_name,omitempty"`
	Expenditure         string `json:"expenditure,omitempty"`
}

func manifestTemplate(t *models.Template) ManifestTemplate {
	out := ManifestTemplate{
		Name:        t.Name,
		Description: t.Description,
		Creator:     t.Creator,
	}
	for _, item := range t.Items {
		out.Items = append(out.Items, ManifestTemplateItem{
			Name:                item.Name,
			Description:         item.Description,
			IsRequired:          item.IsRequired,
			FileTypes:           item.FileTypes,
			NeedsWatermark:      item.NeedsWatermark,
			WatermarkTemplate:   item.WatermarkTemplate,
			AllowsMultipleFiles: item.AllowsMultipleFiles,
			DisplayOrder:        item.DisplayOrder,
			Category:            item.Category,
		})
	}
	return out
}

// itemsFromManifest converts manifest item definitions into model items for
// equivalence comparison or creation under templateID.
func itemsFromManifest(items []ManifestTemplateItem, templateID string) []models.TemplateItem {
	out := make([]models.TemplateItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.TemplateItem{
			ID:                  uuid.New().String(),
			TemplateID:          templateID,
			Name:                item.Name,
			Description:         item.Description,
			IsRequired:          item.IsRequired,
			FileTypes:           normalizeFileTypes(item.FileTypes),
			NeedsWatermark:      item.NeedsWatermark,
			WatermarkTemplate:   item.WatermarkTemplate,
			AllowsMultipleFiles: item.AllowsMultipleFiles,
			DisplayOrder:        item.DisplayOrder,
			Category:            item.Category,
		})
	}
	return out
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
