package app

import (
	"fmt"
	"math"
	"sync"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/secure"
)

// Quiz is an ordered question set plus the state of the current attempt.
type Quiz struct {
	id          string
	title       string
	description string
	key         string
	keyLength   int
	now         func() time.Time

	mu        sync.RWMutex
	questions []domain.Question
	answers   []*domain.AnswerRecord
	startTime *time.Time
	endTime   *time.Time
}

// QuizOption customizes a quiz at construction.
type QuizOption func(*Quiz)

// WithKey sets the access key instead of generating one.
func WithKey(key string) QuizOption {
	return func(q *Quiz) { q.key = key }
}

// WithKeyLength sets the length of a generated key; it has no effect with WithKey.
// A non-positive n keeps the default length.
func WithKeyLength(n int) QuizOption {
	return func(q *Quiz) { q.keyLength = n }
}

// WithClock allows deterministic timestamps in tests.
func WithClock(now func() time.Time) QuizOption {
	return func(q *Quiz) { q.now = now }
}

// WithQuestions seeds the question set.
func WithQuestions(questions ...domain.Question) QuizOption {
	return func(q *Quiz) {
		for _, question := range questions {
			question.Options = append([]string(nil), question.Options...)
			q.questions = append(q.questions, question)
		}
	}
}

// NewQuiz builds a quiz with no attempt in progress. A key is generated when none is given.
func NewQuiz(id, title, description string, opts ...QuizOption) (*Quiz, error) {
	q := &Quiz{
		id:          id,
		title:       title,
		description: description,
		keyLength:   secure.DefaultKeyLength,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := domain.ValidateQuestionIDs(q.questions); err != nil {
		return nil, fmt.Errorf("quiz %q: %w", id, err)
	}
	if q.key == "" {
		if q.keyLength > 0 && (q.keyLength < secure.MinKeyLength || q.keyLength > secure.MaxKeyLength) {
			return nil, fmt.Errorf("%w: key length %d outside [%d, %d]", domain.ErrInvalidArgument, q.keyLength, secure.MinKeyLength, secure.MaxKeyLength)
		}
		key, err := secure.GenerateQuizKey(q.keyLength)
		if err != nil {
			return nil, fmt.Errorf("generate key for quiz %q: %w", id, err)
		}
		q.key = key
	}
	return q, nil
}

func (q *Quiz) ID() string { return q.id }

func (q *Quiz) Title() string { return q.title }

func (q *Quiz) Description() string { return q.description }

// Key returns the access key. Callers that only need to check a key should use ValidateKey.
func (q *Quiz) Key() string { return q.key }

// Questions returns a copy of the question set.
func (q *Quiz) Questions() []domain.Question {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]domain.Question(nil), q.questions...)
}

// AddQuestion appends a question. Question IDs must be non-empty and unique within the quiz.
func (q *Quiz) AddQuestion(question domain.Question) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	candidate := append(q.questions[:len(q.questions):len(q.questions)], question)
	if err := domain.ValidateQuestionIDs(candidate); err != nil {
		return err
	}
	question.Options = append([]string(nil), question.Options...)
	q.questions = append(q.questions, question)
	return nil
}

// State reports where the current attempt is in its lifecycle.
func (q *Quiz) State() domain.State {
	q.mu.RLock()
	defer q.mu.RUnlock()
	switch {
	case q.endTime != nil:
		return domain.Finished
	case q.startTime != nil:
		return domain.InProgress
	default:
		return domain.NotStarted
	}
}

// Start begins a new attempt, discarding any previous answers.
func (q *Quiz) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	q.startTime = &now
	q.endTime = nil
	q.answers = nil
}

// SubmitAnswer records or overwrites the answer for a question. It is accepted in any state.
func (q *Quiz) SubmitAnswer(questionIndex, answerIndex int) (domain.AnswerRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if questionIndex < 0 || questionIndex >= len(q.questions) {
		return domain.AnswerRecord{}, fmt.Errorf("%w: question index %d, quiz has %d questions", domain.ErrOutOfRange, questionIndex, len(q.questions))
	}
	question := q.questions[questionIndex]
	if answerIndex < 0 || answerIndex >= len(question.Options) {
		return domain.AnswerRecord{}, fmt.Errorf("%w: answer index %d, question %q has %d options", domain.ErrOutOfRange, answerIndex, question.ID, len(question.Options))
	}

	correct := question.IsCorrect(answerIndex)
	record := domain.AnswerRecord{
		QuestionID:  question.ID,
		AnswerIndex: answerIndex,
		IsCorrect:   correct,
		Timestamp:   q.now(),
	}
	if correct {
		record.Points = question.MaxPoints()
	}

	if len(q.answers) <= questionIndex {
		grown := make([]*domain.AnswerRecord, questionIndex+1)
		copy(grown, q.answers)
		q.answers = grown
	}
	q.answers[questionIndex] = &record
	return record, nil
}

// Finish stamps the end time and returns the results snapshot. Repeated calls move the end time.
func (q *Quiz) Finish() domain.Results {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	q.endTime = &now
	return q.resultsLocked()
}

// Reset clears answers and timestamps, keeping the questions.
func (q *Quiz) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.answers = nil
	q.startTime = nil
	q.endTime = nil
}

// Answers returns the recorded answers by question position; unanswered positions are nil.
func (q *Quiz) Answers() []*domain.AnswerRecord {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*domain.AnswerRecord, len(q.answers))
	for i, a := range q.answers {
		if a != nil {
			rec := *a
			out[i] = &rec
		}
	}
	return out
}

// TotalPoints sums the weight of every question.
func (q *Quiz) TotalPoints() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.totalPointsLocked()
}

// Results computes the scoring snapshot for the current state.
func (q *Quiz) Results() domain.Results {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.resultsLocked()
}

func (q *Quiz) resultsLocked() domain.Results {
	res := domain.Results{
		TotalQuestions: len(q.questions),
		MaxScore:       q.totalPointsLocked(),
		Details:        []domain.ResultDetail{},
	}
	if q.startTime == nil || q.answeredLocked() == 0 {
		return res
	}

	for i, answer := range q.answers {
		if answer == nil {
			continue
		}
		question := q.questions[i]
		if answer.IsCorrect {
			res.CorrectAnswers++
		}
		res.Score += answer.Points
		// An invalid correct index leaves the text empty; scoring already treats the answer as wrong.
		correctText, _ := question.CorrectAnswer()
		res.Details = append(res.Details, domain.ResultDetail{
			Question:      question.Text,
			UserAnswer:    question.Options[answer.AnswerIndex],
			CorrectAnswer: correctText,
			IsCorrect:     answer.IsCorrect,
			Points:        answer.Points,
			MaxPoints:     question.MaxPoints(),
		})
	}
	res.Percentage = percent(res.Score, res.MaxScore)

	end := q.now()
	if q.endTime != nil {
		end = *q.endTime
	}
	d := end.Sub(*q.startTime)
	res.Duration = &d
	return res
}

// Progress reports answered count and running score for the current attempt.
func (q *Quiz) Progress() domain.Progress {
	q.mu.RLock()
	defer q.mu.RUnlock()

	p := domain.Progress{
		TotalQuestions:   len(q.questions),
		MaxPossibleScore: q.totalPointsLocked(),
	}
	for _, answer := range q.answers {
		if answer == nil {
			continue
		}
		p.AnsweredQuestions++
		p.CurrentScore += answer.Points
	}
	p.PercentComplete = percent(p.AnsweredQuestions, p.TotalQuestions)
	return p
}

// ValidateKey compares providedKey to the access key in constant time.
func (q *Quiz) ValidateKey(providedKey string) bool {
	return secure.Equal(providedKey, q.key)
}

func (q *Quiz) totalPointsLocked() int {
	total := 0
	for _, question := range q.questions {
		total += question.MaxPoints()
	}
	return total
}

func (q *Quiz) answeredLocked() int {
	n := 0
	for _, answer := range q.answers {
		if answer != nil {
			n++
		}
	}
	return n
}

// percent returns part/whole*100 rounded to two decimals, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}
