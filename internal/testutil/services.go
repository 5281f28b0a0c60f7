package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/khoahotran/portfolio-api/internal/application/service"
)

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	Deleted []string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]byte{}}
}

func (c *MemoryCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	raw, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *MemoryCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.Deleted = append(c.Deleted, k)
	}
	return nil
}

func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// EventRecorder keeps every published event in order.
type EventRecorder struct {
	mu     sync.Mutex
	events []service.PortfolioEvent
}

func (r *EventRecorder) PublishPortfolioEvent(ctx context.Context, evt service.PortfolioEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *EventRecorder) Events() []service.PortfolioEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]service.PortfolioEvent(nil), r.events...)
}

// FakeUploader stores uploads in memory and serves them from a fake CDN host.
type FakeUploader struct {
	mu      sync.Mutex
	Uploads map[string][]byte
	Deleted []string
	Err     error
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{Uploads: map[string][]byte{}}
}

func (u *FakeUploader) Upload(ctx context.Context, file io.Reader, folder string, publicID string) (*service.UploadResult, error) {
	if u.Err != nil {
		return nil, u.Err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	fullID := folder + "/" + publicID
	u.mu.Lock()
	u.Uploads[fullID] = data
	u.mu.Unlock()
	return &service.UploadResult{URL: "https://cdn.test/" + fullID, PublicID: fullID}, nil
}

func (u *FakeUploader) Delete(ctx context.Context, publicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.Uploads, publicID)
	u.Deleted = append(u.Deleted, publicID)
	return nil
}

func (u *FakeUploader) DeletedIDs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string{}, u.Deleted...)
}

func (u *FakeUploader) TransformedURL(publicID, transformation string) (string, error) {
	return fmt.Sprintf("https://cdn.test/%s/%s", transformation, publicID), nil
}
