package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/secure"
)

// ResultsStore implements app.ResultsStore.
// Snapshots are stored as: SET quiz:{quizID}:results {json or sealed envelope} EX ttl
type ResultsStore struct {
	client *redis.Client
	ttl    time.Duration
	sealer *secure.Sealer
}

// NewResultsStore stores snapshots in plain JSON unless sealer is non-nil.
func NewResultsStore(client *redis.Client, ttl time.Duration, sealer *secure.Sealer) *ResultsStore {
	return &ResultsStore{client: client, ttl: ttl, sealer: sealer}
}

func (s *ResultsStore) SaveResults(ctx context.Context, quizID string, results domain.Results) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if s.sealer != nil {
		if raw, err = s.sealer.Seal(raw); err != nil {
			return fmt.Errorf("seal results: %w", err)
		}
	}
	return s.client.Set(ctx, resultsKey(quizID), raw, s.ttl).Err()
}

func (s *ResultsStore) LoadResults(ctx context.Context, quizID string) (domain.Results, error) {
	raw, err := s.client.Get(ctx, resultsKey(quizID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Results{}, fmt.Errorf("%w: %q", domain.ErrResultsNotFound, quizID)
	}
	if err != nil {
		return domain.Results{}, err
	}
	if s.sealer != nil {
		if raw, err = s.sealer.Open(raw); err != nil {
			return domain.Results{}, fmt.Errorf("open results: %w", err)
		}
	}
	var results domain.Results
	if err := json.Unmarshal(raw, &results); err != nil {
		return domain.Results{}, fmt.Errorf("unmarshal results: %w", err)
	}
	return results, nil
}

func resultsKey(quizID string) string {
	return "quiz:" + quizID + ":results"
}
