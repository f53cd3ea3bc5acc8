package filestorage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage keeps objects in process. Selected with STORAGE_DRIVER=memory and used in tests.
type MemoryStorage struct {
	bucket  string
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{bucket: bucket, objects: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(_ context.Context, key string, data []byte, contentType string) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[s.bucket+"/"+key] = append([]byte(nil), data...)
	return Object{Bucket: s.bucket, Key: key, Size: int64(len(data)), ContentType: contentType}, nil
}

func (s *MemoryStorage) Download(_ context.Context, bucket string, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s does not exist", bucket, key)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorage) PresignedURL(_ context.Context, bucket string, key string) (string, error) {
	return fmt.Sprintf("memory://%s/%s", bucket, key), nil
}

func (s *MemoryStorage) Remove(_ context.Context, bucket string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, bucket+"/"+key)
	return nil
}
