package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/segal-ziv/smartbill/internal/cache"
	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/httpclient"
	"github.com/segal-ziv/smartbill/internal/queue"
	"github.com/segal-ziv/smartbill/internal/testutil"
	"github.com/segal-ziv/smartbill/internal/types"
)

type SyncServiceSuite struct {
	testutil.BaseServiceTestSuite
	svc SyncService
}

func TestSyncServiceSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceSuite))
}

func (s *SyncServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		S3:           s.GetBlobStore(),
		DocumentRepo: stores.DocumentRepo,
		SupplierRepo: stores.SupplierRepo,
		CategoryRepo: stores.CategoryRepo,
		SettingsRepo: stores.SettingsRepo,
		AuditLogRepo: stores.AuditLogRepo,
		Enqueuer:     s.GetEnqueuer(),
		OCRProvider:  &testutil.StubOCRProvider{},
		Encryption:   s.GetEncryption(),
		Cache:        cache.NewInMemoryCache(),
		Client:       httpclient.NewDefaultClient(),
	}
	s.svc = NewSyncService(params, nil, nil)
}

func (s *SyncServiceSuite) TestEnqueuePublishesJob() {
	s.NoError(s.svc.Enqueue(s.GetContext(), types.IngestionSourceGmail))

	jobs := s.GetPublisher().ByTopic(queue.QueueIngestion.Topic())
	s.Require().Len(jobs, 1)
	s.Equal("ingestion-"+testutil.TestOwnerID+"-GMAIL", jobs[0].Key)

	var payload queue.IngestionJobPayload
	s.Require().NoError(json.Unmarshal(jobs[0].Payload, &payload))
	s.Equal(testutil.TestOwnerID, payload.OwnerID)
	s.Equal(types.IngestionSourceGmail, payload.Source)
}

func (s *SyncServiceSuite) TestRepeatedTriggersShareKey() {
	s.NoError(s.svc.Enqueue(s.GetContext(), types.IngestionSourceIMAP))
	s.NoError(s.svc.Enqueue(s.GetContext(), types.IngestionSourceIMAP))

	// triggers always publish; the stable per-owner key lets the worker
	// drop whichever delivery arrives while the first is running
	jobs := s.GetPublisher().ByTopic(queue.QueueIngestion.Topic())
	s.Require().Len(jobs, 2)
	s.Equal(jobs[0].Key, jobs[1].Key)
}

func (s *SyncServiceSuite) TestEnqueueRejectsPushSources() {
	for _, source := range []types.IngestionSource{
		types.IngestionSourceManual,
		types.IngestionSourceWhatsApp,
	} {
		err := s.svc.Enqueue(s.GetContext(), source)
		s.Error(err)
		s.True(ierr.IsValidation(err))
	}
}

func (s *SyncServiceSuite) TestEnqueueRequiresOwner() {
	err := s.svc.Enqueue(s.T().Context(), types.IngestionSourceGmail)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SyncServiceSuite) TestSyncRejectsUnknownSource() {
	_, err := s.svc.Sync(s.GetContext(), types.IngestionSourceManual)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
