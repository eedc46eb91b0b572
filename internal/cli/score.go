package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/memory"
	pgloader "quiz-engine/internal/infra/postgres"
	redisinfra "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/secure"
)

type scoreOptions struct {
	quizID  string
	key     string
	answers string
}

// NewScoreCmd runs one attempt against a quiz and prints the results snapshot.
func NewScoreCmd(configPath *string) *cobra.Command {
	opts := scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a set of answers against a quiz",
		Example: `  quiz-engine score --quiz capitals --key capitals-key-01 --answers 0,1,-
  (answers are option indexes by question position; "-" skips a question)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cfg, log, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.quizID, "quiz", "", "quiz id")
	cmd.Flags().StringVar(&opts.key, "key", "", "access key for the quiz")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "comma separated option indexes")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

// backends bundles the adapters selected by config.
type backends struct {
	repo     app.QuizRepository
	registry app.QuizRegistry
	results  app.ResultsStore
	close    func()
}

func openBackends(ctx context.Context, cfg config.Config) (_ *backends, err error) {
	b := &backends{}
	var closers []func()
	b.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			b.close()
		}
	}()

	var loader memory.QuizLoader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		loader = pgloader.NewQuizLoader(pool)
	case cfg.Quiz.Bank != "":
		bank, err := config.LoadBank(cfg.Quiz.Bank)
		if err != nil {
			return nil, err
		}
		loader = memory.NewBankLoader(bank)
	default:
		return nil, fmt.Errorf("no quiz source configured: set postgres.url or quiz.bank")
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		b.repo = memory.NewQuizRepository(loader, cacheTTL)
		b.registry = memory.NewRegistry()
	} else {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })

		var sealer *secure.Sealer
		if cfg.Secret.ResultsKey != "" {
			s, err := secure.NewSealer([]byte(cfg.Secret.ResultsKey))
			if err != nil {
				return nil, err
			}
			sealer = s
		}
		b.repo = redisinfra.NewQuizRepository(client, loader, cacheTTL, sealer)
		b.registry = redisinfra.NewRegistry(client, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		b.results = redisinfra.NewResultsStore(client, config.TTLDuration(cfg.Quiz.ResultsTTL, 24*time.Hour), sealer)
	}

	return b, nil
}

func runScore(ctx context.Context, cfg config.Config, log zerolog.Logger, opts scoreOptions, out io.Writer) error {
	answers, err := parseAnswers(opts.answers)
	if err != nil {
		return err
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	def, err := b.repo.GetQuiz(ctx, opts.quizID)
	if err != nil {
		return err
	}
	manager := app.NewQuizManager(b.registry, app.WithKeyLength(cfg.Quiz.KeyLength))
	quiz, err := manager.Load(def)
	if err != nil {
		return err
	}
	// Quizzes defined without a key are open; the generated key is never shown.
	if def.Key != "" {
		if _, err := manager.Authorize(quiz.ID(), opts.key); err != nil {
			return err
		}
	}

	quiz.Start()
	for questionIndex, answerIndex := range answers {
		if answerIndex < 0 {
			continue
		}
		if _, err := quiz.SubmitAnswer(questionIndex, answerIndex); err != nil {
			return err
		}
	}
	results := quiz.Finish()

	log.Info().
		Str("quiz", quiz.ID()).
		Int("score", results.Score).
		Int("maxScore", results.MaxScore).
		Float64("percentage", results.Percentage).
		Msg("attempt scored")

	if b.results != nil {
		if err := b.results.SaveResults(ctx, quiz.ID(), results); err != nil {
			return fmt.Errorf("save results: %w", err)
		}
		log.Debug().Str("quiz", quiz.ID()).Msg("results saved")
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// parseAnswers turns "0,2,-,1" into option indexes; "-" or an empty item marks a skipped question as -1.
func parseAnswers(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	answers := make([]int, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "-" {
			answers[i] = -1
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("answer %d: %q is not an option index", i+1, part)
		}
		answers[i] = n
	}
	return answers, nil
}
