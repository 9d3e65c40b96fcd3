package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/segal-ziv/smartbill/internal/api"
	v1 "github.com/segal-ziv/smartbill/internal/api/v1"
	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/ingestion"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/ocr"
	"github.com/segal-ziv/smartbill/internal/pubsub"
	kafkaPubsub "github.com/segal-ziv/smartbill/internal/pubsub/kafka"
	memoryPubsub "github.com/segal-ziv/smartbill/internal/pubsub/memory"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/repository/memory"
	"github.com/segal-ziv/smartbill/internal/s3"
	"github.com/segal-ziv/smartbill/internal/security"
	"github.com/segal-ziv/smartbill/internal/sentry"
	"github.com/segal-ziv/smartbill/internal/service"
	"github.com/segal-ziv/smartbill/internal/types"
	"github.com/segal-ziv/smartbill/internal/worker"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			provideCache,

			// Blob storage
			s3.NewService,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Secrets
			security.NewEncryptionService,

			// Repositories
			memory.NewDocumentRepository,
			memory.NewSupplierRepository,
			memory.NewCategoryRepository,
			memory.NewSettingsRepository,
			memory.NewAuditLogRepository,

			// Queue transport
			providePubSub,
			queue.NewKeyRegistry,
			provideEnqueuer,

			// OCR
			ocr.NewVisionProvider,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewIngestionService,
			provideIngester,
			service.NewSupplierService,
			service.NewCategoryService,
			service.NewSettingsService,
			service.NewOCRService,
			service.NewDocumentService,
			service.NewExportService,
			service.NewSyncService,

			// Ingestion adapters
			ingestion.NewGmailAdapter,
			ingestion.NewIMAPAdapter,
			ingestion.NewWhatsAppAdapter,
		),
	)

	// API and workers
	opts = append(opts,
		fx.Provide(
			provideWorkers,
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startApp,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideCache(log *logger.Logger) cache.Cache {
	return cache.Initialize(log)
}

func providePubSub(cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	switch cfg.Queue.PubSub {
	case types.KafkaPubSub:
		return kafkaPubsub.NewPubSub(cfg, log)
	default:
		return memoryPubsub.NewPubSub(log), nil
	}
}

func provideEnqueuer(ps pubsub.PubSub, log *logger.Logger) *queue.Enqueuer {
	return queue.NewEnqueuer(ps, log)
}

// provideIngester exposes the ingestion service to the mail and
// webhook adapters under the narrow interface they depend on.
func provideIngester(svc service.IngestionService) ingestion.Ingester {
	return svc
}

func provideWorkers(
	ps pubsub.PubSub,
	registry *queue.KeyRegistry,
	sentrySvc *sentry.Service,
	ocrService service.OCRService,
	syncService service.SyncService,
	exportService service.ExportService,
	log *logger.Logger,
) map[queue.Name]*queue.Worker {
	return map[queue.Name]*queue.Worker{
		queue.QueueOCR: queue.NewWorker(
			queue.QueueOCR, worker.OCRHandler(ocrService), ps, registry, sentrySvc, log),
		queue.QueueIngestion: queue.NewWorker(
			queue.QueueIngestion, worker.IngestionHandler(syncService, log), ps, registry, sentrySvc, log),
		queue.QueueExport: queue.NewWorker(
			queue.QueueExport, worker.ExportHandler(exportService, log), ps, registry, sentrySvc, log),
	}
}

func provideHandlers(
	logger *logger.Logger,
	documentService service.DocumentService,
	ingestionService service.IngestionService,
	ocrService service.OCRService,
	supplierService service.SupplierService,
	categoryService service.CategoryService,
	settingsService service.SettingsService,
	syncService service.SyncService,
	exportService service.ExportService,
	gmail *ingestion.GmailAdapter,
	whatsapp *ingestion.WhatsAppAdapter,
	workers map[queue.Name]*queue.Worker,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Document: v1.NewDocumentHandler(documentService, ingestionService, ocrService, logger),
		Supplier: v1.NewSupplierHandler(supplierService, logger),
		Category: v1.NewCategoryHandler(categoryService, logger),
		Settings: v1.NewSettingsHandler(settingsService, gmail, logger),
		Sync:     v1.NewSyncHandler(syncService, logger),
		Export:   v1.NewExportHandler(exportService, logger),
		Webhook:  v1.NewWebhookHandler(whatsapp, logger),
		Jobs:     v1.NewJobsHandler(workers),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startApp(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	workers map[queue.Name]*queue.Worker,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeDevelopment:
		startAPIServer(lc, r, cfg, log)
		startWorkers(lc, workers, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeWorker:
		startWorkers(lc, workers, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startWorkers(
	lc fx.Lifecycle,
	workers map[queue.Name]*queue.Worker,
	log *logger.Logger,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for name, w := range workers {
				name, w := name, w
				go func() {
					if err := w.Run(runCtx); err != nil {
						log.Errorw("queue worker exited", "queue", name, "error", err)
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping queue workers...")
			cancel()
			return nil
		},
	})
}
