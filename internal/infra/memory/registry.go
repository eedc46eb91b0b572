package memory

import (
	"sync"

	"quiz-engine/internal/app"
)

// Registry is an in-memory implementation of app.QuizRegistry.
type Registry struct {
	mu      sync.RWMutex
	quizzes map[string]*app.Quiz
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		quizzes: make(map[string]*app.Quiz),
	}
}

func (r *Registry) Add(quiz *app.Quiz) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quiz.ID()]; ok {
		return false
	}
	r.quizzes[quiz.ID()] = quiz
	r.order = append(r.order, quiz.ID())
	return true
}

func (r *Registry) Get(quizID string) (*app.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[quizID]
	return quiz, ok
}

func (r *Registry) Delete(quizID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quizID]; !ok {
		return false
	}
	delete(r.quizzes, quizID)
	for i, id := range r.order {
		if id == quizID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) List() []*app.Quiz {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*app.Quiz, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.quizzes[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.quizzes)
}
