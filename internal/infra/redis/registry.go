package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-engine/internal/app"
	"quiz-engine/internal/infra/memory"
)

// Registry is a Redis-aware implementation of app.QuizRegistry.
// Quiz state stays in process (attempt state is not shared between instances).
// Redis carries a marker per registered quiz that expires after ttl unless the
// quiz is looked up again; a present marker means the quiz was in use recently,
// an absent one does not prove it was unregistered.
type Registry struct {
	*memory.Registry
	client *redis.Client
	ttl    time.Duration
}

func NewRegistry(client *redis.Client, ttl time.Duration) *Registry {
	return &Registry{
		Registry: memory.NewRegistry(),
		client:   client,
		ttl:      ttl,
	}
}

func (r *Registry) Add(quiz *app.Quiz) bool {
	if !r.Registry.Add(quiz) {
		return false
	}
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), registryKey(quiz.ID()), quiz.Title(), r.ttl).Err()
	return true
}

func (r *Registry) Get(quizID string) (*app.Quiz, bool) {
	quiz, ok := r.Registry.Get(quizID)
	if ok {
		// best-effort refresh of the marker
		_ = r.client.Set(context.Background(), registryKey(quizID), quiz.Title(), r.ttl).Err()
	}
	return quiz, ok
}

func (r *Registry) Delete(quizID string) bool {
	if !r.Registry.Delete(quizID) {
		return false
	}
	_ = r.client.Del(context.Background(), registryKey(quizID)).Err()
	return true
}

func registryKey(quizID string) string {
	return "quiz:registry:" + quizID
}
