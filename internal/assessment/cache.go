package assessment

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const questionCacheKeyPrefix = "questions:course:"

// CachedQuestionStore is a redis read-through cache over a QuestionStore.
// Question sets are rarely-written configuration, so a short TTL keeps edits
// visible without hammering the database on every submission. Cache faults
// degrade to the inner store; they never fail a workflow.
type CachedQuestionStore struct {
	inner  QuestionStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedQuestionStore(inner QuestionStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedQuestionStore {
	return &CachedQuestionStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedQuestionStore) ListByCourse(ctx context.Context, courseID string) ([]Question, error) {
	if s.client == nil {
		return s.inner.ListByCourse(ctx, courseID)
	}

	key := questionCacheKeyPrefix + courseID
	if raw, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var cached []Question
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// corrupt entry, fall through to the store and overwrite
	} else if err != redis.Nil {
		s.logger.WarnContext(ctx, "question cache read failed", "course_id", courseID, "error", err.Error())
	}

	questions, err := s.inner.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(questions); err == nil {
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "question cache write failed", "course_id", courseID, "error", err.Error())
		}
	}
	return questions, nil
}
