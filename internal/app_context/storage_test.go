package appcontext

import (
	"testing"

	"github.com/SeakMengs/EventHub/internal/config"
	filestorage "github.com/SeakMengs/EventHub/internal/file_storage"
	"go.uber.org/zap"
)

func TestNewStorage(t *testing.T) {
	logger := zap.NewNop().Sugar()

	cfg := config.Config{Minio: config.MinioConfig{DRIVER: "Memory", BUCKET: "eventhub"}}
	s, closeFn, err := NewStorage(cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if _, ok := s.(*filestorage.MemoryStorage); !ok {
		t.Errorf("expected memory storage, got %T", s)
	}

	cfg.Minio.DRIVER = "s3"
	if _, _, err := NewStorage(cfg, logger); err == nil {
		t.Errorf("expected an unknown driver error")
	}
}
