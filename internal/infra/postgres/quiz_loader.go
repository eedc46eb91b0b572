package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-engine/internal/domain"
)

// QuizLoader loads quiz definitions from the quizzes table; questions live in a JSONB column.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.QuizDefinition, error) {
	def := domain.QuizDefinition{ID: quizID}
	var (
		key       *string
		questions []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT title, description, access_key, questions FROM quizzes WHERE id=$1`, quizID,
	).Scan(&def.Title, &def.Description, &key, &questions)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizDefinition{}, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, quizID)
	}
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("load quiz: %w", err)
	}
	if key != nil {
		def.Key = *key
	}
	if err := json.Unmarshal(questions, &def.Questions); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return def, nil
}

// SaveQuiz upserts a definition.
func (l *QuizLoader) SaveQuiz(ctx context.Context, def domain.QuizDefinition) error {
	questions, err := json.Marshal(def.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	var key *string
	if def.Key != "" {
		key = &def.Key
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO quizzes (id, title, description, access_key, questions)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			access_key = EXCLUDED.access_key,
			questions = EXCLUDED.questions`,
		def.ID, def.Title, def.Description, key, string(questions))
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}
