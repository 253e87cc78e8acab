package services

import (
	"time"

	"github.com/lunarfall/ballot/pkg/internal/models"
)

// IsOpen decides whether a poll accepts votes at the given instant. The
// manual flag always wins; an elapsed closing time closes the poll even
// when the flag is clear.
func IsOpen(poll models.Poll, now time.Time) bool {
	if poll.ManualClosed {
		return false
	}
	if poll.ClosingAt != nil && !now.Before(*poll.ClosingAt) {
		return false
	}
	return true
}

// ClosePoll raises the manual-closed flag. Closing an already closed poll
// is a no-op, not an error.
func (e *VotingEngine) ClosePoll(id uint) (models.Poll, error) {
	poll, err := e.Polls.Get(id)
	if err != nil {
		return poll, err
	}
	if poll.ManualClosed {
		return poll, nil
	}

	poll.ManualClosed = true
	return e.Polls.Save(poll)
}

// ReopenPoll clears the manual-closed flag only. A poll past its closing
// time stays closed until the closing time itself is edited.
func (e *VotingEngine) ReopenPoll(id uint) (models.Poll, error) {
	poll, err := e.Polls.Get(id)
	if err != nil {
		return poll, err
	}
	if !poll.ManualClosed {
		return poll, nil
	}

	poll.ManualClosed = false
	return e.Polls.Save(poll)
}
