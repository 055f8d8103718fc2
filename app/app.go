package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tee-wizard/app/controller"
	"tee-wizard/app/router"
	"tee-wizard/config"
	"tee-wizard/db"
	"tee-wizard/logger"
	"tee-wizard/models"
	"tee-wizard/repository"
	"tee-wizard/service"
	"tee-wizard/storage"
)

// Initialize wires storage, persistence, vendor clients and controllers and
// returns the HTTP handler serving them
func Initialize(ctx context.Context, cfg *config.Config, log *zap.Logger) (http.Handler, error) {
	log = logger.OrNop(log)

	// Object storage
	objects, err := storage.NewS3ObjectStore(ctx, &cfg.Storage, storage.WithLogger(log.Named("storage")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// Optional persistence
	var designRepo repository.DesignRepositoryInterface = repository.NoopDesignRepository{}
	var jobRepo repository.MockupJobRepositoryInterface = repository.NoopMockupJobRepository{}
	if dsn := cfg.Database.DSN(); dsn != "" {
		if err := db.InitDB(ctx, dsn, log.Named("db")); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.EnsureSchema(ctx, db.DB); err != nil {
			return nil, err
		}
		designRepo = repository.NewDesignRepository(db.DB, log.Named("designs"))
		jobRepo = repository.NewMockupJobRepository(db.DB, log.Named("mockup_jobs"))
	} else {
		log.Warn("No database configured, design history and mockup jobs are not persisted")
	}

	// Base shirt
	loader, err := baseShirtLoader(ctx, &cfg.BaseShirt, log)
	if err != nil {
		return nil, err
	}
	baseShirt := service.NewBaseShirtCache(loader, log.Named("base_shirt"))

	// Vendor
	printful := service.NewPrintfulClient(&cfg.Printful, service.WithPrintfulLogger(log.Named("printful")))
	runner := service.NewMockupJobRunner(
		printful,
		service.NewMockupStore(cfg.App.MockupDir),
		service.MockupJobConfigFrom(&cfg.Printful),
		log.Named("mockup_job"),
	)

	// Services
	generator := service.NewGeneratorClient(&cfg.Generator, nil, log.Named("generator"))
	designService := service.NewDesignService(generator, objects, designRepo, log.Named("design"))
	previewService := service.NewPreviewService(objects, baseShirt, service.NewCompositor(log.Named("compositor")), log.Named("preview"))
	purchaseService := service.NewPurchaseService(printful, runner, jobRepo, log.Named("purchase"))

	// Create controllers
	controllers := &router.Controllers{
		Design:     controller.NewDesignController(designService, previewService, log),
		Product:    controller.NewProductController(purchaseService, log),
		ImageProxy: controller.NewImageProxyController(&http.Client{Timeout: cfg.Generator.Timeout}, imageProxyHosts(cfg, objects), log),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers, cfg.App.MockupDir)
	return router.WithRequestLogging(mux, log.Named("http")), nil
}

// baseShirtLoader picks the base shirt source: Drive file, then local path, then URL
func baseShirtLoader(ctx context.Context, cfg *config.BaseShirtConfig, log *zap.Logger) (service.LoaderFunc, error) {
	switch {
	case cfg.DriveFileID != "":
		drive, err := service.NewDriveService(ctx, cfg.DriveCredentials, log.Named("drive"))
		if err != nil {
			return nil, err
		}
		log.Info("Base shirt source", zap.String("drive_file_id", cfg.DriveFileID))
		return service.DriveLoader(drive, cfg.DriveFileID), nil
	case cfg.Path != "":
		log.Info("Base shirt source", zap.String("path", cfg.Path))
		return service.FileLoader(cfg.Path), nil
	case cfg.URL != "":
		log.Info("Base shirt source", zap.String("url", cfg.URL))
		return service.HTTPLoader(nil, cfg.URL), nil
	default:
		return nil, &models.ConfigurationError{Field: "BASE_SHIRT_URL", Reason: "is not set"}
	}
}

// imageProxyHosts lists the hosts canvas images legitimately come from:
// object storage, the generator, this app and any configured extras.
func imageProxyHosts(cfg *config.Config, objects *storage.S3ObjectStore) []string {
	hosts := []string{
		objects.PublicURL(""),
		cfg.Storage.Endpoint,
		cfg.Generator.BaseURL,
		cfg.App.PublicBaseURL,
		cfg.BaseShirt.URL,
	}
	return append(hosts, cfg.App.ImageProxyHosts...)
}
