package syncer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const lastSyncKey = "numu:last_sync"

// RedisStatus keeps the last sync result in Redis so the API can report
// it across process restarts. Recording is best-effort; a failed write
// never fails the sync itself.
type RedisStatus struct {
	client *redis.Client
}

func NewRedisStatus(client *redis.Client) *RedisStatus {
	return &RedisStatus{client: client}
}

func (s *RedisStatus) RecordSync(ctx context.Context, res Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, lastSyncKey, raw, 0).Err(); err != nil {
		log.Printf("sync status: failed to record last run: %v", err)
	}
}

// LastSync returns the most recent recorded result, or nil when no sync
// has run yet.
func (s *RedisStatus) LastSync(ctx context.Context) (*Result, error) {
	raw, err := s.client.Get(ctx, lastSyncKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
