// Package media archives photos submitted to flows for later verification.
package media

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"kisanmitra/internal/datauri"
)

var ErrNotFound = errors.New("media not found")

// Store is the archive behind flow.MediaArchive.
type Store interface {
	Put(ctx context.Context, key string, blob datauri.Blob) error
	Get(ctx context.Context, key string) (datauri.Blob, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// DefaultCapacity bounds the in-memory archive when no S3 bucket is
// configured.
const DefaultCapacity = 64

// MemoryStore keeps the most recent photos only. Older entries are evicted
// once capacity is reached.
type MemoryStore struct {
	blobs *lru.Cache[string, datauri.Blob]
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	blobs, err := lru.New[string, datauri.Blob](capacity)
	if err != nil {
		panic(err)
	}
	return &MemoryStore{blobs: blobs}
}

func checkKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("media: key is required")
	}
	return key, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, blob datauri.Blob) error {
	key, err := checkKey(key)
	if err != nil {
		return err
	}
	blob.Data = append([]byte(nil), blob.Data...)
	s.blobs.Add(key, blob)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (datauri.Blob, error) {
	key, err := checkKey(key)
	if err != nil {
		return datauri.Blob{}, err
	}
	b, ok := s.blobs.Get(key)
	if !ok {
		return datauri.Blob{}, ErrNotFound
	}
	b.Data = append([]byte(nil), b.Data...)
	return b, nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, k := range s.blobs.Keys() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
