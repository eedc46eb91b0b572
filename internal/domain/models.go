package domain

import "time"

// DefaultPoints is the weight of a question that does not set one.
const DefaultPoints = 1

// State is the lifecycle position of the current attempt.
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return "not_started"
	}
}

// AnswerRecord is the stored outcome of one submitted answer.
type AnswerRecord struct {
	QuestionID  string    `json:"questionId"`
	AnswerIndex int       `json:"answerIndex"`
	IsCorrect   bool      `json:"isCorrect"`
	Points      int       `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
}

// ResultDetail describes one answered question in a results snapshot.
type ResultDetail struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	MaxPoints     int    `json:"maxPoints"`
}

// Results is the aggregate scoring snapshot of an attempt.
// Duration is nil until an attempt has started and recorded at least one answer.
type Results struct {
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	Score          int            `json:"score"`
	MaxScore       int            `json:"maxScore"`
	Percentage     float64        `json:"percentage"`
	Duration       *time.Duration `json:"duration"`
	Details        []ResultDetail `json:"details"`
}

// Progress reports how far the current attempt has gone.
type Progress struct {
	TotalQuestions    int     `json:"totalQuestions"`
	AnsweredQuestions int     `json:"answeredQuestions"`
	PercentComplete   float64 `json:"percentComplete"`
	CurrentScore      int     `json:"currentScore"`
	MaxPossibleScore  int     `json:"maxPossibleScore"`
}

// QuizDefinition is the construction data for a quiz as provided by a question bank or database.
type QuizDefinition struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Key         string     `json:"key,omitempty" yaml:"key,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions" validate:"dive"`
}
