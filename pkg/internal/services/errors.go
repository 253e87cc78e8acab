package services

import "errors"

// Every expected outcome of the engine is one of these sentinels, possibly
// wrapped with context. Anything else is an opaque storage failure.
var (
	ErrValidation    = errors.New("validation failed")
	ErrPollNotFound  = errors.New("poll not found")
	ErrVoteNotFound  = errors.New("vote not found")
	ErrInvalidOption = errors.New("option does not belong to this poll")
	ErrPollClosed    = errors.New("poll is closed")
	ErrAlreadyVoted  = errors.New("account already voted in this poll")
	ErrPollHasVotes  = errors.New("poll options cannot be redefined after votes were cast")
)
