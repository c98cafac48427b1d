package numu

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const surveysCacheKey = "numu:surveys"

// SurveyCache wraps FetchSurveys with a short-lived Redis cache so repeated
// syncs and aggregations do not hammer the upstream rate limit. Cache
// failures fall through to the live call.
type SurveyCache struct {
	client *Client
	redis  *redis.Client
	ttl    time.Duration
}

func NewSurveyCache(client *Client, rdb *redis.Client, ttl time.Duration) *SurveyCache {
	return &SurveyCache{client: client, redis: rdb, ttl: ttl}
}

func (s *SurveyCache) FetchSurveys(ctx context.Context) ([]SurveyPayload, error) {
	if raw, err := s.redis.Get(ctx, surveysCacheKey).Bytes(); err == nil {
		var surveys []SurveyPayload
		if jsonErr := json.Unmarshal(raw, &surveys); jsonErr == nil {
			return surveys, nil
		}
	}

	surveys, err := s.client.FetchSurveys(ctx)
	if err != nil {
		return nil, err
	}

	if len(surveys) > 0 {
		raw, err := json.Marshal(surveys)
		if err == nil {
			if err := s.redis.Set(ctx, surveysCacheKey, raw, s.ttl).Err(); err != nil {
				log.Printf("surveys cache: failed to store: %v", err)
			}
		}
	}
	return surveys, nil
}
