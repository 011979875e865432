package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "catalog:snapshot"

// SnapshotCache は上流から取得した直近のスナップショットを Redis に保持します。
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache は SnapshotCache を作成します。
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get はキャッシュ済みスナップショットを取得します。未登録の場合は nil を返します。
func (c *SnapshotCache) Get(ctx context.Context) (map[string]Book, error) {
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var snapshot map[string]Book
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Set はスナップショットをTTL付きで保存します。
func (c *SnapshotCache) Set(ctx context.Context, snapshot map[string]Book) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey, payload, c.ttl).Err()
}
