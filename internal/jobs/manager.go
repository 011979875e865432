// Package jobs はカタログ更新の非同期ジョブ管理機能を提供します。
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/yourusername/bookstand/internal/catalog"
)

const (
	taskTypeRefresh = "catalog:refresh"
	refreshQueue    = "catalog"
)

// Manager は上流カタログ更新ジョブの投入と状態管理を担います。
type Manager struct {
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	store    *Store
	books    *catalog.Store
	fetcher  *catalog.Fetcher
	cache    *catalog.SnapshotCache
	logger   *log.Logger
	interval time.Duration
	stop     chan struct{}
}

// TaskPayload はカタログ更新ジョブのペイロードです。
type TaskPayload struct {
	JobID string `json:"jobId"`
}

// NewManager は Manager を初期化します。
func NewManager(redisURL string, books *catalog.Store, fetcher *catalog.Fetcher, cache *catalog.SnapshotCache, store *Store, interval time.Duration, logger *log.Logger) (*Manager, error) {
	if books == nil {
		return nil, errors.New("books store is nil")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				refreshQueue: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client:   client,
		server:   server,
		mux:      mux,
		store:    store,
		books:    books,
		fetcher:  fetcher,
		cache:    cache,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
	mux.HandleFunc(taskTypeRefresh, manager.handleRefreshTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーと定期投入ループをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logf("asynq server stopped with error: %v", err)
		}
	}()

	go func() {
		// 起動直後に1回実行し、その後は一定間隔で更新する
		if _, err := m.EnqueueRefresh(context.Background()); err != nil {
			m.logf("failed to enqueue initial catalog refresh: %v", err)
		}

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := m.EnqueueRefresh(context.Background()); err != nil {
					m.logf("failed to enqueue catalog refresh: %v", err)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	close(m.stop)
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// EnqueueRefresh はカタログ更新ジョブをキューに投入します。
func (m *Manager) EnqueueRefresh(ctx context.Context) (string, error) {
	jobID := uuid.NewString()

	record := &Record{
		JobID:  jobID,
		Status: StatusQueued,
	}
	if err := m.store.Upsert(ctx, record); err != nil {
		return "", err
	}

	body, err := json.Marshal(&TaskPayload{JobID: jobID})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(taskTypeRefresh, body, asynq.Queue(refreshQueue))
	if _, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(1)); err != nil {
		return "", err
	}
	return jobID, nil
}

// LatestRecord は直近の更新ジョブ情報を取得します。
func (m *Manager) LatestRecord(ctx context.Context) (*Record, error) {
	return m.store.Latest(ctx)
}

func (m *Manager) handleRefreshTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.JobID == "" {
		return fmt.Errorf("missing jobId in payload")
	}

	if err := m.store.Upsert(ctx, &Record{
		JobID:  payload.JobID,
		Status: StatusRunning,
	}); err != nil {
		return err
	}

	snapshot, err := m.fetcher.Fetch(ctx)
	if err != nil {
		// 取得失敗はカタログに影響させず、空の結果として記録するだけに留める
		m.logf("catalog refresh failed job=%s: %v", payload.JobID, err)
		return m.failJobWithError(ctx, payload.JobID, err)
	}

	if m.cache != nil {
		if err := m.cache.Set(ctx, snapshot); err != nil {
			m.logf("failed to cache catalog snapshot job=%s: %v", payload.JobID, err)
		}
	}

	added := m.books.Merge(snapshot)
	return m.store.MarkDone(ctx, payload.JobID, m.books.Len(), added)
}

func (m *Manager) failJobWithError(ctx context.Context, jobID string, err error) error {
	var apiErr *catalog.Error
	if errors.As(err, &apiErr) {
		return m.store.MarkFailed(ctx, jobID, &ErrorInfo{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		})
	}
	return m.store.MarkFailed(ctx, jobID, &ErrorInfo{
		Code:    "INTERNAL_ERROR",
		Message: err.Error(),
	})
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
