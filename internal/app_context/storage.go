package appcontext

import (
	"fmt"
	"strings"

	"github.com/SeakMengs/EventHub/internal/cache"
	"github.com/SeakMengs/EventHub/internal/config"
	filestorage "github.com/SeakMengs/EventHub/internal/file_storage"
	"go.uber.org/zap"
)

const (
	StorageDriverMinio  = "minio"
	StorageDriverMemory = "memory"
)

// NewStorage picks the object storage driver and wraps it with the redis url cache when
// REDIS_ADDR is set. closeFn releases the redis connection.
func NewStorage(cfg config.Config, logger *zap.SugaredLogger) (storage filestorage.Storage, closeFn func(), err error) {
	closeFn = func() {}

	switch strings.ToLower(cfg.Minio.DRIVER) {
	case StorageDriverMemory:
		logger.Warn("Using in memory storage, objects are lost on restart and not shared between processes")
		storage = filestorage.NewMemoryStorage(cfg.Minio.BUCKET)
	case "", StorageDriverMinio:
		s3, err := filestorage.NewMinioClient(&cfg.Minio)
		if err != nil {
			return nil, closeFn, fmt.Errorf("failed to create minio client: %w", err)
		}
		storage = filestorage.NewMinioStorage(s3, cfg.Minio.BUCKET)
		logger.Info("Minio connected \n")
	default:
		return nil, closeFn, fmt.Errorf("unknown storage driver %q", cfg.Minio.DRIVER)
	}

	if cfg.Redis.ADDR == "" {
		return storage, closeFn, nil
	}

	client, err := cache.ConnectRedis(cfg.Redis)
	if err != nil {
		// presigning works without the cache
		logger.Warnf("Redis unavailable, presigned urls are not cached: %v", err)
		return storage, closeFn, nil
	}
	logger.Info("Redis connected \n")

	closeFn = func() {
		if err := client.Close(); err != nil {
			logger.Errorf("Failed to close redis connection: %v", err)
		}
	}
	return filestorage.WithURLCache(storage, cache.NewURLCache(client, cfg.Redis.URL_CACHE_TTL, logger)), closeFn, nil
}
