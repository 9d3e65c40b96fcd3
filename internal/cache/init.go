package cache

import (
	"github.com/segal-ziv/smartbill/internal/logger"
)

// Initialize initializes the cache system
func Initialize(log *logger.Logger) *InMemoryCache {
	log.Info("Initializing cache system")

	InitializeInMemoryCache()

	return GetInMemoryCache()
}
