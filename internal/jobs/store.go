package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobKeyPrefix = "refresh:"
	latestKey    = "refresh:latest"
)

// Store はカタログ更新ジョブの状態を Redis に保存します。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get はジョブ情報を取得します。見つからない場合は nil を返します。
func (s *Store) Get(ctx context.Context, jobID string) (*Record, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID is required")
	}
	data, err := s.rdb.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Latest は直近のジョブ情報を取得します。
func (s *Store) Latest(ctx context.Context) (*Record, error) {
	jobID, err := s.rdb.Get(ctx, latestKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return s.Get(ctx, jobID)
}

// Upsert はジョブ情報を保存し、最新ジョブとして記録します。
func (s *Store) Upsert(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.ExpiresAt.IsZero() && s.ttl > 0 {
		record.ExpiresAt = record.CreatedAt.Add(s.ttl)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, jobKey(record.JobID), payload, s.ttl).Err(); err != nil {
		return err
	}
	return s.rdb.Set(ctx, latestKey, record.JobID, s.ttl).Err()
}

// MarkDone はジョブ完了時の情報を保存します。
func (s *Store) MarkDone(ctx context.Context, jobID string, bookCount, added int) error {
	return s.updatePartial(ctx, jobID, func(record *Record) {
		record.Status = StatusSucceeded
		record.BookCount = bookCount
		record.Added = added
		record.Error = nil
	})
}

// MarkFailed はジョブ失敗時の情報を保存します。
func (s *Store) MarkFailed(ctx context.Context, jobID string, errInfo *ErrorInfo) error {
	return s.updatePartial(ctx, jobID, func(record *Record) {
		record.Status = StatusFailed
		if errInfo != nil {
			record.Error = errInfo
		}
	})
}

func (s *Store) updatePartial(ctx context.Context, jobID string, mutate func(*Record)) error {
	key := jobKey(jobID)
	for {
		tx := s.rdb.TxPipeline()
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("refresh job not found: %s", jobID)
			}
			return err
		}
		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		mutate(&record)
		record.UpdatedAt = time.Now().UTC()
		payload, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		tx.Set(ctx, key, payload, s.ttl)
		_, err = tx.Exec(ctx)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}
