package services

import (
	"time"

	"github.com/lunarfall/ballot/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// PollStore owns poll records. It carries no business rules beyond the
// open-only filter, which must derive from both the manual flag and the
// closing timestamp.
type PollStore interface {
	Create(poll models.Poll) (models.Poll, error)
	Get(id uint) (models.Poll, error)
	List(openOnly bool, now time.Time, take int, offset int) ([]models.Poll, error)
	Save(poll models.Poll) (models.Poll, error)
	// Delete removes the poll and purges every vote referencing it.
	Delete(id uint) error
}

// VoteLedger owns the append-only record of who voted for what. Record is
// the single admission point: the duplicate check and the insert are one
// atomically-visible step, never two calls from here, and option
// membership is checked against the poll's current state rather than the
// caller's snapshot.
type VoteLedger interface {
	HasVoted(pollID uint, voterID uint) (bool, error)
	Record(poll models.Poll, optionID string, voterID uint) (models.Vote, error)
	VoteOf(pollID uint, voterID uint) (models.Vote, error)
	VotesFor(pollID uint) ([]models.Vote, error)
	Purge(pollID uint) (int64, error)
	PurgeOrphans() (int64, error)
}

// VotingEngine validates and admits votes, coordinating the poll store,
// the vote ledger and the lifecycle rules. The clock is injectable so
// closing-time decisions are deterministic under test.
type VotingEngine struct {
	Polls  PollStore
	Ledger VoteLedger
	Now    func() time.Time
}

func NewVotingEngine(polls PollStore, ledger VoteLedger) *VotingEngine {
	return &VotingEngine{
		Polls:  polls,
		Ledger: ledger,
		Now:    time.Now,
	}
}

func (e *VotingEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// SubmitVote runs the whole admission: the poll must exist, be open right
// now, contain the chosen option, and the voter must not have a prior
// vote. All checks gate before the ledger mutates; a failed admission
// leaves no vote and no count change.
func (e *VotingEngine) SubmitVote(pollID uint, optionID string, voter models.Account) (models.Vote, error) {
	poll, err := e.Polls.Get(pollID)
	if err != nil {
		return models.Vote{}, err
	}
	if !IsOpen(poll, e.now()) {
		return models.Vote{}, ErrPollClosed
	}
	if !poll.HasOption(optionID) {
		return models.Vote{}, ErrInvalidOption
	}

	vote, err := e.Ledger.Record(poll, optionID, voter.ID)
	if err != nil {
		return models.Vote{}, err
	}

	e.FlushPollMetric(poll.ID)

	log.Info().
		Uint("poll", poll.ID).
		Uint("voter", voter.ID).
		Str("option", optionID).
		Msg("Vote has been recorded.")

	return vote, nil
}

// HasVoted reports the voter-participation fact the transport layer uses
// for closed-poll result gating.
func (e *VotingEngine) HasVoted(pollID uint, voterID uint) (bool, error) {
	return e.Ledger.HasVoted(pollID, voterID)
}

func (e *VotingEngine) GetOwnVote(pollID uint, voter models.Account) (models.Vote, error) {
	return e.Ledger.VoteOf(pollID, voter.ID)
}

// CanSeeResults tells whether an account may read the tally of a poll.
// Open polls show results to everyone; closed polls only to admins and to
// accounts that voted.
func (e *VotingEngine) CanSeeResults(poll models.Poll, account models.Account) bool {
	if account.IsAdmin() || IsOpen(poll, e.now()) {
		return true
	}
	voted, err := e.Ledger.HasVoted(poll.ID, account.ID)
	return err == nil && voted
}
