package services

import (
	"testing"
	"time"

	"github.com/lunarfall/ballot/pkg/internal/models"
)

var (
	testAdmin = models.Account{ID: 1, Name: "warden", Role: models.RoleAdmin}
	testVoter = models.Account{ID: 2, Name: "alice", Role: models.RoleUser}
)

func newTestEngine(t *testing.T) (*VotingEngine, *MemoryStore) {
	t.Helper()

	store := NewMemoryStore()
	engine := NewVotingEngine(store, store)
	engine.Now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}

	return engine, store
}

func mustCreatePoll(t *testing.T, engine *VotingEngine, question string, closingAt *time.Time) models.Poll {
	t.Helper()

	poll, err := engine.NewPoll(question, []string{"Red", "Blue"}, closingAt, testAdmin)
	if err != nil {
		t.Fatalf("failed to create poll: %v", err)
	}
	return poll
}

func optionByText(t *testing.T, poll models.Poll, text string) models.PollOption {
	t.Helper()

	for _, option := range poll.Options {
		if option.Text == text {
			return option
		}
	}
	t.Fatalf("poll has no option %q", text)
	return models.PollOption{}
}
