package services

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lunarfall/ballot/pkg/internal/models"
)

func TestSubmitVoteUnknownPoll(t *testing.T) {
	engine, _ := newTestEngine(t)

	if _, err := engine.SubmitVote(404, "whatever", testVoter); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
}

func TestSubmitVoteClosedAtCreation(t *testing.T) {
	engine, _ := newTestEngine(t)
	past := engine.now().Add(-time.Minute)
	poll := mustCreatePoll(t, engine, "Born closed", &past)
	red := optionByText(t, poll, "Red")

	if _, err := engine.SubmitVote(poll.ID, red.ID, testVoter); !errors.Is(err, ErrPollClosed) {
		t.Fatalf("expected ErrPollClosed, got %v", err)
	}
	if voted, _ := engine.HasVoted(poll.ID, testVoter.ID); voted {
		t.Fatal("a failed admission must leave no vote behind")
	}
}

func TestSubmitVoteManuallyClosed(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Shut early", nil)
	red := optionByText(t, poll, "Red")

	if _, err := engine.ClosePoll(poll.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := engine.SubmitVote(poll.ID, red.ID, testVoter); !errors.Is(err, ErrPollClosed) {
		t.Fatalf("expected ErrPollClosed, got %v", err)
	}
}

func TestSubmitVoteForeignOption(t *testing.T) {
	engine, _ := newTestEngine(t)
	first := mustCreatePoll(t, engine, "First", nil)
	second := mustCreatePoll(t, engine, "Second", nil)
	foreign := optionByText(t, second, "Red")

	if _, err := engine.SubmitVote(first.ID, foreign.ID, testVoter); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if metric := engine.GetPollMetric(first); metric.TotalVotes != 0 {
		t.Fatal("rejected vote must not bump any count")
	}
}

func TestSubmitVoteTwice(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Only once", nil)
	red := optionByText(t, poll, "Red")
	blue := optionByText(t, poll, "Blue")

	if _, err := engine.SubmitVote(poll.ID, red.ID, testVoter); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	// A second attempt fails even for a different option.
	if _, err := engine.SubmitVote(poll.ID, blue.ID, testVoter); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if metric := engine.GetPollMetric(poll); metric.TotalVotes != 1 {
		t.Fatalf("expected exactly one recorded vote, got %d", metric.TotalVotes)
	}
}

func TestSubmitVoteConcurrentSamePair(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Race me", nil)
	red := optionByText(t, poll, "Red")

	const attempts = 16
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitVote(poll.ID, red.ID, testVoter)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected admission outcome: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("exactly one concurrent attempt must win, got %d", successes.Load())
	}
	if duplicates.Load() != attempts-1 {
		t.Errorf("every other attempt must fail as already voted, got %d", duplicates.Load())
	}

	votes, err := engine.Ledger.VotesFor(poll.ID)
	if err != nil {
		t.Fatalf("ledger read failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("ledger must hold exactly one vote for the pair, got %d", len(votes))
	}
}

func TestSubmitVoteConcurrentDistinctVoters(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Everyone in", nil)
	red := optionByText(t, poll, "Red")

	const voters = 12
	var successes atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			voter := models.Account{ID: id, Role: models.RoleUser}
			if _, err := engine.SubmitVote(poll.ID, red.ID, voter); err == nil {
				successes.Add(1)
			}
		}(uint(100 + i))
	}
	wg.Wait()

	if successes.Load() != voters {
		t.Fatalf("every distinct voter should be admitted, got %d of %d", successes.Load(), voters)
	}
	if metric := engine.GetPollMetric(poll); metric.ByOptions[red.ID] != voters {
		t.Fatalf("expected %d votes on Red, got %d", voters, metric.ByOptions[red.ID])
	}
}

func TestDeletePollCascadesVotes(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Q", nil)
	red := optionByText(t, poll, "Red")
	blue := optionByText(t, poll, "Blue")

	if _, err := engine.SubmitVote(poll.ID, red.ID, models.Account{ID: 10}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := engine.SubmitVote(poll.ID, blue.ID, models.Account{ID: 11}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	if err := engine.DeletePoll(poll.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	votes, err := engine.Ledger.VotesFor(poll.ID)
	if err != nil {
		t.Fatalf("ledger read failed: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("cascade must remove every vote, %d left", len(votes))
	}
	if _, err := engine.GetPoll(poll.ID); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound after delete, got %v", err)
	}
}

func TestRecordAgainstDeletedPollSnapshot(t *testing.T) {
	engine, store := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Going away", nil)
	red := optionByText(t, poll, "Red")

	if err := engine.DeletePoll(poll.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// A caller holding a pre-deletion snapshot is turned away at the
	// ledger, which shares its serialization point with the deletion.
	if _, err := store.Record(poll, red.ID, testVoter.ID); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
}

func TestRecordAgainstEditedPollSnapshot(t *testing.T) {
	engine, store := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Mutable", nil)
	staleRed := optionByText(t, poll, "Red")

	// The option list is redefined while a caller still holds the old
	// snapshot; its option id no longer belongs to the poll.
	edited, err := engine.EditPoll(poll.ID, "Mutable", []string{"Cyan", "Magenta"}, nil)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if _, err := store.Record(poll, staleRed.ID, testVoter.ID); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption for a stale option reference, got %v", err)
	}

	metric := engine.GetPollMetric(edited)
	if metric.TotalVotes != 0 {
		t.Fatalf("rejected stale vote must leave the ledger empty, total %d", metric.TotalVotes)
	}
	var sum int64
	for _, count := range metric.ByOptions {
		sum += count
	}
	if sum != metric.TotalVotes {
		t.Errorf("per-option counts sum to %d, want %d", sum, metric.TotalVotes)
	}

	// The current option set still admits votes.
	cyan := optionByText(t, edited, "Cyan")
	if _, err := store.Record(edited, cyan.ID, testVoter.ID); err != nil {
		t.Fatalf("vote for a current option failed: %v", err)
	}
}

func TestPurgeOrphanVotes(t *testing.T) {
	engine, store := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Keeper", nil)
	red := optionByText(t, poll, "Red")
	if _, err := engine.SubmitVote(poll.ID, red.ID, testVoter); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	// Plant a stray vote referencing a poll that no longer exists.
	store.mu.Lock()
	store.voteSeq++
	store.votes[store.voteSeq] = models.Vote{ID: store.voteSeq, PollID: 404, OptionID: "gone", VoterID: 9}
	store.mu.Unlock()

	removed, err := store.PurgeOrphans()
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 orphan removed, got %d", removed)
	}

	votes, _ := engine.Ledger.VotesFor(poll.ID)
	if len(votes) != 1 {
		t.Fatalf("live votes must survive the sweep, got %d", len(votes))
	}
}

func TestGetOwnVote(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Mine", nil)
	blue := optionByText(t, poll, "Blue")

	if _, err := engine.GetOwnVote(poll.ID, testVoter); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound before voting, got %v", err)
	}

	cast, err := engine.SubmitVote(poll.ID, blue.ID, testVoter)
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	vote, err := engine.GetOwnVote(poll.ID, testVoter)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if vote.ID != cast.ID || vote.OptionID != blue.ID {
		t.Errorf("unexpected vote returned: %+v", vote)
	}
}

func TestCanSeeResults(t *testing.T) {
	engine, _ := newTestEngine(t)
	poll := mustCreatePoll(t, engine, "Secret until voted", nil)
	blue := optionByText(t, poll, "Blue")
	bystander := models.Account{ID: 33, Role: models.RoleUser}

	if !engine.CanSeeResults(poll, bystander) {
		t.Error("open polls expose results to everyone")
	}

	if _, err := engine.SubmitVote(poll.ID, blue.ID, testVoter); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	closed, err := engine.ClosePoll(poll.ID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if engine.CanSeeResults(closed, bystander) {
		t.Error("closed polls hide results from accounts that never voted")
	}
	if !engine.CanSeeResults(closed, testVoter) {
		t.Error("closed polls expose results to voters")
	}
	if !engine.CanSeeResults(closed, testAdmin) {
		t.Error("closed polls expose results to administrators")
	}
}
