package filestorage

import "context"

type URLCache interface {
	Get(ctx context.Context, bucket, key string) (string, bool)
	Set(ctx context.Context, bucket, key, url string)
	Invalidate(ctx context.Context, bucket, key string)
}

// CachedStorage reuses presigned urls so listing templates does not sign every background again.
type CachedStorage struct {
	Storage
	urls URLCache
}

func WithURLCache(s Storage, urls URLCache) *CachedStorage {
	return &CachedStorage{Storage: s, urls: urls}
}

func (s *CachedStorage) PresignedURL(ctx context.Context, bucket string, key string) (string, error) {
	if url, ok := s.urls.Get(ctx, bucket, key); ok {
		return url, nil
	}

	url, err := s.Storage.PresignedURL(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	s.urls.Set(ctx, bucket, key, url)
	return url, nil
}

func (s *CachedStorage) Remove(ctx context.Context, bucket string, key string) error {
	s.urls.Invalidate(ctx, bucket, key)
	return s.Storage.Remove(ctx, bucket, key)
}
