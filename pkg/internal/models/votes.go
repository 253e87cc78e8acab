package models

import "time"

// Vote is an immutable fact recording that a voter picked an option in a
// poll. The composite unique index makes the insert itself the
// one-vote-per-poll admission check.
type Vote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PollID   uint   `json:"poll_id" gorm:"uniqueIndex:idx_votes_poll_voter"`
	OptionID string `json:"option_id"`
	VoterID  uint   `json:"voter_id" gorm:"uniqueIndex:idx_votes_poll_voter"`
}
