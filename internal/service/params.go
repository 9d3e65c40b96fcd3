package service

import (
	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
	"github.com/segal-ziv/smartbill/internal/domain/category"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	"github.com/segal-ziv/smartbill/internal/domain/settings"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/ocr"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/s3"
	"github.com/segal-ziv/smartbill/internal/security"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	S3     s3.Service

	// Repositories
	DocumentRepo document.Repository
	SupplierRepo supplier.Repository
	CategoryRepo category.Repository
	SettingsRepo settings.Repository
	AuditLogRepo auditlog.Repository

	// Queue
	Enqueuer *queue.Enqueuer

	// OCR
	OCRProvider ocr.Provider

	Encryption security.EncryptionService
	Cache      cache.Cache
	Client     httpclient.Client
}

// NewServiceParams builds the common dependency bundle
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	s3Service s3.Service,
	documentRepo document.Repository,
	supplierRepo supplier.Repository,
	categoryRepo category.Repository,
	settingsRepo settings.Repository,
	auditLogRepo auditlog.Repository,
	enqueuer *queue.Enqueuer,
	ocrProvider ocr.Provider,
	encryption security.EncryptionService,
	cacheStore cache.Cache,
	client httpclient.Client,
) ServiceParams {
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		S3:           s3Service,
		DocumentRepo: documentRepo,
		SupplierRepo: supplierRepo,
		CategoryRepo: categoryRepo,
		SettingsRepo: settingsRepo,
		AuditLogRepo: auditLogRepo,
		Enqueuer:     enqueuer,
		OCRProvider:  ocrProvider,
		Encryption:   encryption,
		Cache:        cacheStore,
		Client:       client,
	}
}
