package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/segal-ziv/smartbill/internal/cache"
	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/domain/auditlog"
	"github.com/segal-ziv/smartbill/internal/domain/category"
	"github.com/segal-ziv/smartbill/internal/domain/document"
	"github.com/segal-ziv/smartbill/internal/domain/settings"
	"github.com/segal-ziv/smartbill/internal/domain/supplier"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/repository/memory"
	"github.com/segal-ziv/smartbill/internal/security"
	"github.com/segal-ziv/smartbill/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	DocumentRepo document.Repository
	SupplierRepo supplier.Repository
	CategoryRepo category.Repository
	SettingsRepo settings.Repository
	AuditLogRepo auditlog.Repository
}

// BaseServiceTestSuite provides common functionality for all service
// test suites: fresh in-memory stores, a recording queue transport and
// a stub OCR provider per test.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	blobs      *InMemoryBlobStore
	publisher  *RecordingPublisher
	enqueuer   *queue.Enqueuer
	encryption security.EncryptionService
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Secrets.EncryptionKey = "test-encryption-key-for-unit-tests-only"

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.encryption, err = security.NewEncryptionService(cfg, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create encryption service: %v", err)
	}

	cache.Initialize(s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		DocumentRepo: memory.NewDocumentRepository(),
		SupplierRepo: memory.NewSupplierRepository(),
		CategoryRepo: memory.NewCategoryRepository(),
		SettingsRepo: memory.NewSettingsRepository(),
		AuditLogRepo: memory.NewAuditLogRepository(),
	}
	s.blobs = NewInMemoryBlobStore()
	s.publisher = NewRecordingPublisher()
	s.enqueuer = queue.NewEnqueuer(s.publisher, s.logger)
	s.now = time.Now().UTC()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetBlobStore() *InMemoryBlobStore {
	return s.blobs
}

func (s *BaseServiceTestSuite) GetPublisher() *RecordingPublisher {
	return s.publisher
}

func (s *BaseServiceTestSuite) GetEnqueuer() *queue.Enqueuer {
	return s.enqueuer
}

func (s *BaseServiceTestSuite) GetEncryption() security.EncryptionService {
	return s.encryption
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
