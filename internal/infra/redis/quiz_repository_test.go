package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/secure"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewBankLoader([]domain.QuizDefinition{sampleDefinition()}),
	}
	repo := NewQuizRepository(client, loader, time.Minute, nil)

	def, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:quiz-1:definition") {
		t.Fatalf("expected definition cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Title != def.Title || len(cached.Questions) != len(def.Questions) {
		t.Fatalf("cached definition differs: %+v", cached)
	}
	if cached.Questions[1].CorrectIndex != 1 || cached.Questions[1].Points != 2 {
		t.Fatalf("cached question lost fields: %+v", cached.Questions[1])
	}

	if err := repo.Invalidate(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.GetQuiz(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuizRepositorySealsKeyedDefinitions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	keyed := sampleDefinition()
	keyed.Key = "capitals-key-01"
	loader := &countingLoader{QuizLoader: memory.NewBankLoader([]domain.QuizDefinition{keyed})}

	sealer, err := secure.NewSealer([]byte("cache-secret"))
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute, sealer)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	raw, err := mr.Get("quiz:quiz-1:definition")
	if err != nil {
		t.Fatalf("expected sealed definition cached: %v", err)
	}
	if strings.Contains(raw, "capitals-key-01") || strings.Contains(raw, "What is 2 + 2?") {
		t.Fatalf("expected cached definition to be sealed, got %s", raw)
	}

	cached, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Key != "capitals-key-01" {
		t.Fatalf("expected key restored from sealed cache, got %q", cached.Key)
	}
}

func TestQuizRepositorySkipsKeyedDefinitionsWithoutSealer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	keyed := sampleDefinition()
	keyed.Key = "capitals-key-01"
	loader := &countingLoader{QuizLoader: memory.NewBankLoader([]domain.QuizDefinition{keyed})}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute, nil)

	for i := 0; i < 2; i++ {
		def, err := repo.GetQuiz(context.Background(), "quiz-1")
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if def.Key != "capitals-key-01" {
			t.Fatalf("expected key from loader, got %q", def.Key)
		}
	}
	if mr.Exists("quiz:quiz-1:definition") {
		t.Fatalf("keyed definition must not be cached in plain text")
	}
	if loader.calls != 2 {
		t.Fatalf("expected loader on every call, got %d", loader.calls)
	}
}

type countingLoader struct {
	memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleDefinition() domain.QuizDefinition {
	return domain.QuizDefinition{
		ID:    "quiz-1",
		Title: "Arithmetic",
		Questions: []domain.Question{
			domain.NewQuestion("q1", "What is 2 + 2?", []string{"4", "3"}, 0, 1),
			domain.NewQuestion("q2", "What is 3 + 3?", []string{"5", "6"}, 1, 2),
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
