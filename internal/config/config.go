package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"quiz-engine/internal/domain"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		Bank       string `yaml:"bank"`
		KeyLength  int    `yaml:"key_length"`
		CacheTTL   string `yaml:"cache_ttl"`
		ResultsTTL string `yaml:"results_ttl"`
	} `yaml:"quiz"`
	Secret struct {
		// ResultsKey seals stored results snapshots when set.
		ResultsKey string `yaml:"results_key"`
	} `yaml:"secret"`
}

// Load reads YAML config from path. A missing file yields the zero config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

type bankFile struct {
	Quizzes []domain.QuizDefinition `yaml:"quizzes"`
}

// LoadBank reads a YAML question bank and validates every quiz in it.
func LoadBank(path string) ([]domain.QuizDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse bank %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(bank.Quizzes))
	for _, def := range bank.Quizzes {
		if err := domain.ValidateDefinition(def); err != nil {
			return nil, err
		}
		if _, dup := seen[def.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate quiz %q in bank", domain.ErrAlreadyExists, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return bank.Quizzes, nil
}
