package testutil

import (
	"context"

	"github.com/segal-ziv/smartbill/internal/config"
	"github.com/segal-ziv/smartbill/internal/logger"
	"github.com/segal-ziv/smartbill/internal/types"
)

// TestOwnerID is the user every test runs as unless it overrides the
// context.
const TestOwnerID = "test-owner"

// SetupContext returns a context scoped to the test owner.
func SetupContext() context.Context {
	return types.SetOwnerID(context.Background(), TestOwnerID)
}

// NewTestLogger returns a logger suitable for tests.
func NewTestLogger() *logger.Logger {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelDebug
	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	return log
}

// NewTestConfig returns a configuration with sane test defaults.
func NewTestConfig() *config.Configuration {
	return config.GetDefaultConfig()
}
