package services

import (
	"fmt"
	"os"

	"reimdesk/internal/processor"
	"reimdesk/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PrintService struct {
	db       *gorm.DB
	store    *storage.Store
	projects *ProjectService
	log      *zap.Logger
}

func NewPrintService(db *gorm.DB, store *storage.Store, projects *ProjectService, log *zap.Logger) *PrintService {
	return &PrintService{db: db, store: store, projects: projects, log: log}
}

// ComposeProject merges every attachment of the project into one paginated
// PDF at outPath: items in display order, files in upload order, one page per
// attachment. Bad inputs become placeholder pages instead of failing the
// merge, so the page count mirrors the project's structure.
func (s *PrintService) ComposeProject(projectID, outPath string) error {
	project, err := s.projects.Get(projectID)
	if err != nil {
		return err
	}

	var inputs []processor.PageInput
	for _, item := range project.Items {
		for _, attachment := range item.Attachments {
			inputs = append(inputs, processor.PageInput{
				Path: s.store.Abs(attachment.FilePath),
				Name: attachment.OriginalName,
			})
		}
	}
	if len(inputs) == 0 {
		return ErrNothingToPrint
	}

	workDir, err := os.MkdirTemp("", "reimdesk_print_*")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	placeholders, err := processor.MergeToPDF(inputs, outPath, workDir)
	if err != nil {
		return err
	}
	for _, name := range placeholders {
		s.log.Warn("attachment rendered as placeholder page",
			zap.String("project", projectID), zap.String("file", name))
	}
	return nil
}
