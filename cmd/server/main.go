package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reimdesk/internal"
	"reimdesk/internal/config"
	"reimdesk/internal/handlers"
	"reimdesk/internal/services"
	"reimdesk/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := internal.OpenDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer internal.CloseDB(db)

	// The storage root is a setting; bootstrap the store with the default so
	// the settings table itself can be consulted, then honor the stored root.
	store, err := storage.NewStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatal("failed to open storage root", zap.Error(err))
	}
	settings := services.NewSettingsService(db, store, cfg.Storage.DataDir)
	if root := settings.StorageRoot(); root != store.Root() {
		store, err = storage.NewStore(root)
		if err != nil {
			logger.Fatal("failed to open configured storage root", zap.String("root", root), zap.Error(err))
		}
		settings = services.NewSettingsService(db, store, cfg.Storage.DataDir)
	}

	var pdf *services.PDFRenderer
	if cfg.Gotenberg.URL != "" {
		pdf, err = services.NewPDFRenderer(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
		if err != nil {
			logger.Warn("pdf rendering disabled", zap.Error(err))
			pdf = nil
		}
	}

	templates := services.NewTemplateService(db, logger)
	projects := services.NewProjectService(db, store, logger)
	watermarks := services.NewWatermarkService(db, store, settings, logger)
	attachments := services.NewAttachmentService(db, store, settings, watermarks, logger)
	exports := services.NewExportService(db, store, projects, templates, logger)
	imports := services.NewImportService(db, store, templates, projects, attachments, logger)
	printing := services.NewPrintService(db, store, projects, logger)
	documents := services.NewDocumentService(db, store, pdf, logger)
	activity := services.NewActivityLogService(db, logger)

	templateHandler := handlers.NewTemplateHandler(templates)
	projectHandler := handlers.NewProjectHandler(projects)
	attachmentHandler := handlers.NewAttachmentHandler(attachments, store)
	watermarkHandler := handlers.NewWatermarkHandler(watermarks)
	transferHandler := handlers.NewTransferHandler(exports, imports)
	printHandler := handlers.NewPrintHandler(printing)
	settingsHandler := handlers.NewSettingsHandler(settings, attachments)
	documentHandler := handlers.NewDocumentHandler(documents)
	logsHandler := handlers.NewLogsHandler(activity)

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(handlers.RequestLogger(activity))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/templates", templateHandler.List)
		v1.POST("/templates", templateHandler.Create)
		v1.GET("/templates/:templateId", templateHandler.Get)
		v1.PUT("/templates/:templateId", templateHandler.Update)
		v1.DELETE("/templates/:templateId", templateHandler.Delete)
		v1.POST("/templates/:templateId/items", templateHandler.AddItem)
		v1.PUT("/template-items/:itemId", templateHandler.UpdateItem)
		v1.DELETE("/template-items/:itemId", templateHandler.DeleteItem)
		v1.GET("/templates/:templateId/export", transferHandler.ExportTemplate)
		v1.POST("/template-exports", transferHandler.ExportTemplates)
		v1.POST("/template-imports", transferHandler.ImportTemplate)
		v1.POST("/template-imports/batch", transferHandler.ImportTemplates)

		v1.GET("/projects", projectHandler.List)
		v1.POST("/projects", projectHandler.Create)
		v1.GET("/projects/:projectId", projectHandler.Get)
		v1.PUT("/projects/:projectId", projectHandler.Update)
		v1.DELETE("/projects/:projectId", projectHandler.Delete)
		v1.GET("/projects/:projectId/completeness", projectHandler.CheckComplete)
		v1.GET("/projects/:projectId/export", transferHandler.ExportProject)
		v1.POST("/project-imports", transferHandler.ImportProject)
		v1.GET("/projects/:projectId/print", printHandler.Compose)

		v1.POST("/items/:itemId/attachments", attachmentHandler.Upload)
		v1.GET("/items/:itemId/attachments", attachmentHandler.List)
		v1.DELETE("/attachments/:attachmentId", attachmentHandler.Delete)
		v1.PUT("/attachments/:attachmentId/metadata", attachmentHandler.SetMetadata)
		v1.GET("/attachments/:attachmentId/download", attachmentHandler.Download)
		v1.POST("/attachments/:attachmentId/watermark", watermarkHandler.Apply)
		v1.DELETE("/attachments/:attachmentId/watermark", watermarkHandler.Clear)

		v1.GET("/document-templates", documentHandler.ListTemplates)
		v1.POST("/document-templates", documentHandler.CreateTemplate)
		v1.PUT("/document-templates/:documentId", documentHandler.UpdateTemplate)
		v1.DELETE("/document-templates/:documentId", documentHandler.DeleteTemplate)
		v1.GET("/projects/:projectId/documents", documentHandler.ListProjectDocuments)
		v1.POST("/projects/:projectId/documents", documentHandler.CreateProjectDocument)
		v1.PUT("/documents/:documentId", documentHandler.UpdateProjectDocument)
		v1.DELETE("/documents/:documentId", documentHandler.DeleteProjectDocument)
		v1.POST("/documents/:documentId/pdf", documentHandler.ExportPDF)

		v1.GET("/settings", settingsHandler.GetAll)
		v1.PUT("/settings", settingsHandler.Put)
		v1.POST("/settings/signature", settingsHandler.UploadSignature)
		v1.POST("/settings/storage-root", settingsHandler.MigrateRoot)

		v1.GET("/logs", logsHandler.List)
	}

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
