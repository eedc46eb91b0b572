package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-engine/internal/domain"
)

// QuizLoader fetches quiz definitions from a backing store (question bank file, Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// QuizRepository implements app.QuizRepository on top of a QuizLoader.
// Definitions are cached for ttl plus up to 10% jitter; concurrent misses
// for the same id share a single load.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu      sync.Mutex
	jitter  *rand.Rand
	entries map[string]definitionEntry
}

type definitionEntry struct {
	def       domain.QuizDefinition
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return newQuizRepositoryWithClock(loader, ttl, time.Now)
}

func newQuizRepositoryWithClock(loader QuizLoader, ttl time.Duration, now func() time.Time) *QuizRepository {
	return &QuizRepository{
		loader:  loader,
		ttl:     ttl,
		now:     now,
		jitter:  rand.New(rand.NewSource(now().UnixNano())),
		entries: make(map[string]definitionEntry),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	if def, ok := r.lookup(quizID); ok {
		return def, nil
	}

	v, err, _ := r.group.Do(quizID, func() (interface{}, error) {
		if def, ok := r.lookup(quizID); ok {
			return def, nil
		}
		def, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}
		r.store(quizID, def)
		return def, nil
	})
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	return v.(domain.QuizDefinition), nil
}

// Invalidate drops a cached definition so the next GetQuiz reloads it.
func (r *QuizRepository) Invalidate(quizID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, quizID)
}

func (r *QuizRepository) lookup(quizID string) (domain.QuizDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[quizID]
	if !ok || !entry.expiresAt.After(r.now()) {
		return domain.QuizDefinition{}, false
	}
	return entry.def, true
}

func (r *QuizRepository) store(quizID string, def domain.QuizDefinition) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	spread := time.Duration(r.jitter.Int63n(int64(r.ttl)/10 + 1))
	r.entries[quizID] = definitionEntry{def: def, expiresAt: r.now().Add(r.ttl + spread)}
}

// StaticQuizLoader serves definitions from a map, e.g. a YAML question bank.
type StaticQuizLoader struct {
	quizzes map[string]domain.QuizDefinition
}

func NewStaticQuizLoader(quizzes map[string]domain.QuizDefinition) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

// NewBankLoader indexes a question bank by quiz id.
func NewBankLoader(bank []domain.QuizDefinition) *StaticQuizLoader {
	quizzes := make(map[string]domain.QuizDefinition, len(bank))
	for _, def := range bank {
		quizzes[def.ID] = def
	}
	return NewStaticQuizLoader(quizzes)
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.QuizDefinition, error) {
	if def, ok := l.quizzes[quizID]; ok {
		return def, nil
	}
	return domain.QuizDefinition{}, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, quizID)
}
