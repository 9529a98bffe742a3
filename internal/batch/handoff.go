package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/deksmo/deksmo/internal"
	"github.com/deksmo/deksmo/internal/model"
)

// HandoffKey is where a sibling process leaves a chapter to import.
const HandoffKey = "deksmo_pdf_import"

// KV is the shared key-value namespace used for the extension handoff.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// HandoffRecord is the schema left under HandoffKey.
type HandoffRecord struct {
	Title  string         `json:"title"`
	Images []HandoffImage `json:"images"`
}

type HandoffImage struct {
	Src      string `json:"src"`
	Filename string `json:"filename"`
}

// ImportPending reads the handoff record, removes the key, then creates a
// chapter from it. The removal happens before chapter creation so a reload
// can never re-import the same record. Returns nil when no record is
// pending.
func ImportPending(ctx context.Context, kv KV, store *model.Store) (*model.Chapter, error) {
	raw, ok, err := kv.Get(ctx, HandoffKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read handoff record: %w", err)
	}
	if !ok {
		return nil, nil
	}

	if err := kv.Delete(ctx, HandoffKey); err != nil {
		return nil, fmt.Errorf("failed to remove handoff record: %w", err)
	}

	var record HandoffRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("handoff record is not valid JSON: %w", err)
	}
	if len(record.Images) == 0 {
		internal.WarningLog("Handoff record carries no images, ignoring")
		return nil, nil
	}
	title := record.Title
	if title == "" {
		title = "Grabber Export"
	}

	images := make([]*model.Image, 0, len(record.Images))
	for i, h := range record.Images {
		name := h.Filename
		if name == "" {
			name = fmt.Sprintf("image_%03d", i+1)
		}
		images = append(images, model.NewImage(name, model.URLSource(h.Src), 0))
	}

	chapter := model.NewChapter(title, images)
	store.AddChapters(chapter)
	internal.InfoLog("Imported handoff chapter %q with %d images", title, len(images))
	return chapter, nil
}

// RedisKV backs the shared namespace with redis, the store both sides of
// the handoff can reach.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(addr string) *RedisKV {
	return &RedisKV{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
