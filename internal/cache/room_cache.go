package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"freakmeet/internal/model"
)

// RoomCache handles Redis operations for room metadata. It backs the cheap
// PIN-existence probe; vote counts never pass through it, votes are always
// read from the document store.
type RoomCache interface {
	SetMeta(ctx context.Context, pin string, meta *model.RoomMeta) error
	GetMeta(ctx context.Context, pin string) (*model.RoomMeta, error)
	Exists(ctx context.Context, pin string) (bool, error)
	Delete(ctx context.Context, pin string) error
	Clear(ctx context.Context) (int64, error)
}

type roomCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomCache creates a new room cache
func NewRoomCache(client *redis.Client) RoomCache {
	return &roomCache{
		client: client,
		ttl:    24 * time.Hour, // meta expires after 24h
	}
}

func (c *roomCache) key(pin string) string {
	return fmt.Sprintf("room:%s", pin)
}

func (c *roomCache) SetMeta(ctx context.Context, pin string, meta *model.RoomMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(pin), data, c.ttl).Err()
}

func (c *roomCache) GetMeta(ctx context.Context, pin string) (*model.RoomMeta, error) {
	data, err := c.client.Get(ctx, c.key(pin)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.RoomMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *roomCache) Exists(ctx context.Context, pin string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(pin)).Result()
	return n > 0, err
}

func (c *roomCache) Delete(ctx context.Context, pin string) error {
	return c.client.Del(ctx, c.key(pin)).Err()
}

// Clear drops every cached room entry, used by the admin clear-all utility.
func (c *roomCache) Clear(ctx context.Context) (int64, error) {
	var removed int64
	iter := c.client.Scan(ctx, 0, c.key("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
