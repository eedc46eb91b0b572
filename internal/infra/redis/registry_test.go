package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"quiz-engine/internal/app"
)

func TestRegistrySetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	manager := app.NewQuizManager(NewRegistry(newClient(mr), time.Minute))

	if _, err := manager.CreateQuiz("quiz-1", "Capitals", ""); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if !mr.Exists("quiz:registry:quiz-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("quiz:registry:quiz-1"); got != "Capitals" {
		t.Fatalf("expected marker to carry title, got %q", got)
	}
	if manager.QuizCount() != 1 {
		t.Fatalf("expected 1 quiz, got %d", manager.QuizCount())
	}

	mr.FastForward(45 * time.Second)
	if _, err := manager.GetQuiz("quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if ttl := mr.TTL("quiz:registry:quiz-1"); ttl != time.Minute {
		t.Fatalf("expected lookup to refresh marker ttl, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := manager.GetQuiz("quiz-1"); err != nil {
		t.Fatalf("quiz must stay registered after marker expiry: %v", err)
	}
	if !mr.Exists("quiz:registry:quiz-1") {
		t.Fatalf("expected lookup to recreate an expired marker")
	}

	if !manager.DeleteQuiz("quiz-1") {
		t.Fatalf("expected delete to succeed")
	}
	if mr.Exists("quiz:registry:quiz-1") {
		t.Fatalf("expected redis key to be removed")
	}
}
