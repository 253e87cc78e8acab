package services

import (
	"errors"
	"time"

	"github.com/lunarfall/ballot/pkg/internal/models"
	"gorm.io/gorm"
)

// GormStore backs both the poll store and the vote ledger with one
// relational source. Admission atomicity comes from the composite unique
// index on (poll_id, voter_id): the insert is the duplicate check, and the
// translated duplicate-key error becomes ErrAlreadyVoted.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(poll models.Poll) (models.Poll, error) {
	if err := s.db.Create(&poll).Error; err != nil {
		return poll, err
	}
	return poll, nil
}

func (s *GormStore) Get(id uint) (models.Poll, error) {
	var poll models.Poll
	if err := s.db.Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, ErrPollNotFound
		}
		return poll, err
	}
	return poll, nil
}

func (s *GormStore) List(openOnly bool, now time.Time, take int, offset int) ([]models.Poll, error) {
	tx := s.db.Model(&models.Poll{}).
		Order("created_at DESC").
		Offset(offset).Limit(take)
	if openOnly {
		tx = tx.Where("manual_closed = ? AND (closing_at IS NULL OR closing_at > ?)", false, now)
	}

	var polls []models.Poll
	err := tx.Find(&polls).Error

	return polls, err
}

func (s *GormStore) Save(poll models.Poll) (models.Poll, error) {
	if err := s.db.Save(&poll).Error; err != nil {
		return poll, err
	}
	return poll, nil
}

func (s *GormStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var poll models.Poll
		if err := tx.Where("id = ?", id).First(&poll).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPollNotFound
			}
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&poll).Error
	})
}

func (s *GormStore) HasVoted(pollID uint, voterID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("poll_id = ? AND voter_id = ?", pollID, voterID).
		Count(&count).Error

	return count > 0, err
}

func (s *GormStore) Record(poll models.Poll, optionID string, voterID uint) (models.Vote, error) {
	vote := models.Vote{
		PollID:   poll.ID,
		OptionID: optionID,
		VoterID:  voterID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Membership is re-checked against the freshly loaded row, not the
		// caller's snapshot, so a stale or forged option reference never
		// lands in the ledger even when an edit slipped in between.
		var current models.Poll
		if err := tx.Where("id = ?", poll.ID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPollNotFound
			}
			return err
		}
		if !current.HasOption(optionID) {
			return ErrInvalidOption
		}

		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyVoted
			}
			return err
		}
		return nil
	})
	if err != nil {
		return models.Vote{}, err
	}

	return vote, nil
}

func (s *GormStore) VoteOf(pollID uint, voterID uint) (models.Vote, error) {
	var vote models.Vote
	if err := s.db.Where("poll_id = ? AND voter_id = ?", pollID, voterID).First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vote, ErrVoteNotFound
		}
		return vote, err
	}
	return vote, nil
}

func (s *GormStore) VotesFor(pollID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.Where("poll_id = ?", pollID).Order("created_at ASC").Find(&votes).Error

	return votes, err
}

func (s *GormStore) Purge(pollID uint) (int64, error) {
	result := s.db.Where("poll_id = ?", pollID).Delete(&models.Vote{})
	return result.RowsAffected, result.Error
}

// PurgeOrphans sweeps votes whose poll vanished between the admission
// snapshot and a concurrent deletion. Deletion does not block admission
// here; strays are tolerated and collected by the cleanup job instead.
func (s *GormStore) PurgeOrphans() (int64, error) {
	result := s.db.
		Where("poll_id NOT IN (?)", s.db.Model(&models.Poll{}).Select("id")).
		Delete(&models.Vote{})

	return result.RowsAffected, result.Error
}
