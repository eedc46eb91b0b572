package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"quiz-engine/internal/domain"
)

// QuizRegistry abstracts where registered quizzes live (in-memory, Redis-marked, etc).
type QuizRegistry interface {
	// Add registers the quiz unless its id is taken, reporting whether it was added.
	Add(quiz *Quiz) bool
	Get(quizID string) (*Quiz, bool)
	Delete(quizID string) bool
	// List returns the registered quizzes in insertion order.
	List() []*Quiz
	Len() int
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error)
}

// ResultsStore persists results snapshots produced by finished attempts.
type ResultsStore interface {
	SaveResults(ctx context.Context, quizID string, results domain.Results) error
	LoadResults(ctx context.Context, quizID string) (domain.Results, error)
}

// QuizManager owns the quizzes it creates and hands out shared references to them.
type QuizManager struct {
	registry QuizRegistry
	opts     []QuizOption
}

// NewQuizManager wires a manager to a registry. opts apply to every quiz it constructs.
func NewQuizManager(registry QuizRegistry, opts ...QuizOption) *QuizManager {
	return &QuizManager{registry: registry, opts: opts}
}

// CreateQuiz constructs and registers a quiz. An empty id is replaced by a random UUID.
func (m *QuizManager) CreateQuiz(id, title, description string, opts ...QuizOption) (*Quiz, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := m.registry.Get(id); ok {
		return nil, fmt.Errorf("quiz %q: %w", id, domain.ErrAlreadyExists)
	}
	quiz, err := NewQuiz(id, title, description, append(append([]QuizOption(nil), m.opts...), opts...)...)
	if err != nil {
		return nil, err
	}
	// Add re-checks under the registry lock in case of a concurrent create.
	if !m.registry.Add(quiz) {
		return nil, fmt.Errorf("quiz %q: %w", id, domain.ErrAlreadyExists)
	}
	return quiz, nil
}

// Load validates a definition and registers a quiz built from it.
func (m *QuizManager) Load(def domain.QuizDefinition) (*Quiz, error) {
	if err := domain.ValidateDefinition(def); err != nil {
		return nil, err
	}
	var opts []QuizOption
	if def.Key != "" {
		opts = append(opts, WithKey(def.Key))
	}
	opts = append(opts, WithQuestions(def.Questions...))
	return m.CreateQuiz(def.ID, def.Title, def.Description, opts...)
}

// Open fetches a definition from repo and registers it. An already registered quiz is returned as is.
func (m *QuizManager) Open(ctx context.Context, repo QuizRepository, quizID string) (*Quiz, error) {
	if quiz, ok := m.registry.Get(quizID); ok {
		return quiz, nil
	}
	def, err := repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return m.Load(def)
}

// GetQuiz returns the registered quiz; mutations through it are visible to later lookups.
func (m *QuizManager) GetQuiz(id string) (*Quiz, error) {
	quiz, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, id)
	}
	return quiz, nil
}

// Authorize returns the quiz if providedKey matches its access key.
func (m *QuizManager) Authorize(id, providedKey string) (*Quiz, error) {
	quiz, err := m.GetQuiz(id)
	if err != nil {
		return nil, err
	}
	if !quiz.ValidateKey(providedKey) {
		return nil, domain.ErrInvalidKey
	}
	return quiz, nil
}

// DeleteQuiz unregisters a quiz. References held by callers stay usable.
func (m *QuizManager) DeleteQuiz(id string) bool {
	return m.registry.Delete(id)
}

// ListQuizzes returns a snapshot of the registered quizzes.
func (m *QuizManager) ListQuizzes() []*Quiz {
	return m.registry.List()
}

func (m *QuizManager) QuizCount() int {
	return m.registry.Len()
}
