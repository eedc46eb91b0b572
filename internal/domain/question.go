package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Question models an MCQ item with exactly one correct option, addressed by index.
type Question struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Text         string   `json:"text" yaml:"text" validate:"required"`
	Options      []string `json:"options" yaml:"options" validate:"min=1"`
	CorrectIndex int      `json:"correctIndex" yaml:"correct_index" validate:"gte=0"`
	Points       int      `json:"points" yaml:"points" validate:"gte=0"` // defaults to 1 if zero
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewQuestion builds a question without checking CorrectIndex against Options.
func NewQuestion(id, text string, options []string, correctIndex, points int) Question {
	if points <= 0 {
		points = DefaultPoints
	}
	return Question{
		ID:           id,
		Text:         text,
		Options:      append([]string(nil), options...),
		CorrectIndex: correctIndex,
		Points:       points,
	}
}

// NewValidatedQuestion is NewQuestion followed by ValidateQuestion.
func NewValidatedQuestion(id, text string, options []string, correctIndex, points int) (Question, error) {
	q := NewQuestion(id, text, options, correctIndex, points)
	if err := ValidateQuestion(q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// ValidateQuestion checks field constraints and that CorrectIndex addresses an option.
func ValidateQuestion(q Question) error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: question %q: %v", ErrInvalidArgument, q.ID, err)
	}
	if q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: question %q: correct index %d outside %d options", ErrInvalidArgument, q.ID, q.CorrectIndex, len(q.Options))
	}
	return nil
}

// ValidateDefinition validates a quiz definition and every question in it.
func ValidateDefinition(def QuizDefinition) error {
	if err := validate.Struct(def); err != nil {
		return fmt.Errorf("%w: quiz %q: %v", ErrInvalidArgument, def.ID, err)
	}
	for _, q := range def.Questions {
		if err := ValidateQuestion(q); err != nil {
			return err
		}
	}
	return ValidateQuestionIDs(def.Questions)
}

// ValidateQuestionIDs checks that every question has a non-empty id unique within the set.
func ValidateQuestionIDs(questions []Question) error {
	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has an empty id", ErrInvalidArgument, i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidArgument, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// IsCorrect reports whether answerIndex selects the correct option. No bounds checking.
func (q Question) IsCorrect(answerIndex int) bool {
	return answerIndex == q.CorrectIndex
}

// CorrectAnswer returns the text of the correct option.
func (q Question) CorrectAnswer() (string, error) {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return "", fmt.Errorf("%w: question %q correct index %d", ErrOutOfRange, q.ID, q.CorrectIndex)
	}
	return q.Options[q.CorrectIndex], nil
}

// MaxPoints is the weight awarded for a correct answer.
func (q Question) MaxPoints() int {
	if q.Points <= 0 {
		return DefaultPoints
	}
	return q.Points
}
