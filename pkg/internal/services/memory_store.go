package services

import (
	"sort"
	"sync"
	"time"

	"github.com/lunarfall/ballot/pkg/internal/models"
)

// MemoryStore keeps polls and votes in process memory. It serves the
// ephemeral database driver and the test suite. One mutex is the single
// serialization point: check-and-insert admission and poll deletion both
// run under it, so a vote can never slip past a concurrent duplicate or a
// concurrent delete.
type MemoryStore struct {
	mu sync.Mutex

	pollSeq uint
	voteSeq uint
	polls   map[uint]models.Poll
	votes   map[uint]models.Vote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls: make(map[uint]models.Poll),
		votes: make(map[uint]models.Vote),
	}
}

func (s *MemoryStore) Create(poll models.Poll) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollSeq++
	poll.ID = s.pollSeq
	poll.CreatedAt = time.Now()
	poll.UpdatedAt = poll.CreatedAt
	s.polls[poll.ID] = poll

	return poll, nil
}

func (s *MemoryStore) Get(id uint) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[id]
	if !ok {
		return models.Poll{}, ErrPollNotFound
	}
	return poll, nil
}

func (s *MemoryStore) List(openOnly bool, now time.Time, take int, offset int) ([]models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	polls := make([]models.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		if openOnly && !IsOpen(poll, now) {
			continue
		}
		polls = append(polls, poll)
	}
	sort.Slice(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})

	if offset >= len(polls) {
		return []models.Poll{}, nil
	}
	polls = polls[offset:]
	if take > 0 && take < len(polls) {
		polls = polls[:take]
	}

	return polls, nil
}

func (s *MemoryStore) Save(poll models.Poll) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[poll.ID]; !ok {
		return poll, ErrPollNotFound
	}
	poll.UpdatedAt = time.Now()
	s.polls[poll.ID] = poll

	return poll, nil
}

func (s *MemoryStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[id]; !ok {
		return ErrPollNotFound
	}
	delete(s.polls, id)
	for voteID, vote := range s.votes {
		if vote.PollID == id {
			delete(s.votes, voteID)
		}
	}

	return nil
}

func (s *MemoryStore) HasVoted(pollID uint, voterID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hasVotedLocked(pollID, voterID), nil
}

func (s *MemoryStore) hasVotedLocked(pollID uint, voterID uint) bool {
	for _, vote := range s.votes {
		if vote.PollID == pollID && vote.VoterID == voterID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Record(poll models.Poll, optionID string, voterID uint) (models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The poll may have been deleted or edited since the caller loaded its
	// snapshot; deletion and edits hold the same lock, so checking the
	// current record closes both races.
	current, ok := s.polls[poll.ID]
	if !ok {
		return models.Vote{}, ErrPollNotFound
	}
	if !current.HasOption(optionID) {
		return models.Vote{}, ErrInvalidOption
	}
	if s.hasVotedLocked(poll.ID, voterID) {
		return models.Vote{}, ErrAlreadyVoted
	}

	s.voteSeq++
	vote := models.Vote{
		ID:        s.voteSeq,
		CreatedAt: time.Now(),
		PollID:    poll.ID,
		OptionID:  optionID,
		VoterID:   voterID,
	}
	s.votes[vote.ID] = vote

	return vote, nil
}

func (s *MemoryStore) VoteOf(pollID uint, voterID uint) (models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, vote := range s.votes {
		if vote.PollID == pollID && vote.VoterID == voterID {
			return vote, nil
		}
	}

	return models.Vote{}, ErrVoteNotFound
}

func (s *MemoryStore) VotesFor(pollID uint) ([]models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votes := make([]models.Vote, 0)
	for _, vote := range s.votes {
		if vote.PollID == pollID {
			votes = append(votes, vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		return votes[i].ID < votes[j].ID
	})

	return votes, nil
}

func (s *MemoryStore) Purge(pollID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for voteID, vote := range s.votes {
		if vote.PollID == pollID {
			delete(s.votes, voteID)
			removed++
		}
	}

	return removed, nil
}

func (s *MemoryStore) PurgeOrphans() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for voteID, vote := range s.votes {
		if _, ok := s.polls[vote.PollID]; !ok {
			delete(s.votes, voteID)
			removed++
		}
	}

	return removed, nil
}
