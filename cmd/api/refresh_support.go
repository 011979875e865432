package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/bookstand/internal/catalog"
	"github.com/yourusername/bookstand/internal/config"
	"github.com/yourusername/bookstand/internal/jobs"
)

// setupRefresh は上流カタログ更新ジョブ一式を組み立てます。
// UPSTREAM_CATALOG_URL が未設定の場合は nil を返し、更新機能は無効になります。
func setupRefresh(cfg *config.Config, bookStore *catalog.Store) (*jobs.Manager, error) {
	if cfg.UpstreamCatalogURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.CacheRedisURL)
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(opt)

	cacheTTL := time.Duration(cfg.CatalogCacheTTLMinutes) * time.Minute
	cache := catalog.NewSnapshotCache(redisClient, cacheTTL)
	fetcher := catalog.NewFetcher(cfg.UpstreamCatalogURL, cfg.UpstreamTimeout())
	store := jobs.NewStore(redisClient, cacheTTL)

	interval := time.Duration(cfg.CatalogRefreshMinutes) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return jobs.NewManager(cfg.QueueRedisURL, bookStore, fetcher, cache, store, interval, log.Default())
}

// handleHealth はヘルスチェックエンドポイントのハンドラーを返します。
// 更新ジョブが有効な場合は直近の実行結果も含めます。
func handleHealth(bookStore *catalog.Store, refreshManager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{
			"status":  "ok",
			"service": "bookstand-api",
			"version": "0.1.0",
			"books":   bookStore.Len(),
		}

		if refreshManager != nil {
			record, err := refreshManager.LatestRecord(c.Request.Context())
			if err == nil && record != nil {
				payload["lastRefresh"] = gin.H{
					"jobId":     record.JobID,
					"status":    record.Status,
					"updatedAt": record.UpdatedAt,
				}
			}
		}

		c.JSON(http.StatusOK, payload)
	}
}
