package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunarfall/ballot/pkg/internal/models"
	"github.com/samber/lo"
)

// BuildPollOptions turns the submitted option texts into option records
// with server-issued identities. Texts are trimmed; empty ones dropped;
// at least two must remain and none may collide case-insensitively.
func BuildPollOptions(texts []string) ([]models.PollOption, error) {
	trimmed := lo.FilterMap(texts, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, len(item) > 0
	})
	if len(trimmed) < 2 {
		return nil, fmt.Errorf("%w: a poll needs at least two options", ErrValidation)
	}

	folded := lo.Map(trimmed, func(item string, _ int) string {
		return strings.ToLower(item)
	})
	if len(lo.Uniq(folded)) != len(folded) {
		return nil, fmt.Errorf("%w: option texts must be unique", ErrValidation)
	}

	return lo.Map(trimmed, func(item string, _ int) models.PollOption {
		return models.PollOption{
			ID:   uuid.NewString(),
			Text: item,
		}
	}), nil
}

func (e *VotingEngine) NewPoll(question string, optionTexts []string, closingAt *time.Time, creator models.Account) (models.Poll, error) {
	question = strings.TrimSpace(question)
	if len(question) == 0 {
		return models.Poll{}, fmt.Errorf("%w: question cannot be empty", ErrValidation)
	}

	options, err := BuildPollOptions(optionTexts)
	if err != nil {
		return models.Poll{}, err
	}

	poll := models.Poll{
		Question:  question,
		Options:   options,
		ClosingAt: closingAt,
		AccountID: creator.ID,
	}

	return e.Polls.Create(poll)
}

func (e *VotingEngine) GetPoll(id uint) (models.Poll, error) {
	return e.Polls.Get(id)
}

func (e *VotingEngine) ListPolls(openOnly bool, take int, offset int) ([]models.Poll, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	return e.Polls.List(openOnly, e.now(), take, offset)
}

// EditPoll updates question and closing time freely. The option list can
// only be redefined while the poll has no votes; afterwards prior votes
// would silently lose their option references.
func (e *VotingEngine) EditPoll(id uint, question string, optionTexts []string, closingAt *time.Time) (models.Poll, error) {
	poll, err := e.Polls.Get(id)
	if err != nil {
		return poll, err
	}

	question = strings.TrimSpace(question)
	if len(question) == 0 {
		return poll, fmt.Errorf("%w: question cannot be empty", ErrValidation)
	}

	if optionTexts != nil {
		votes, err := e.Ledger.VotesFor(poll.ID)
		if err != nil {
			return poll, err
		}
		if len(votes) > 0 {
			return poll, ErrPollHasVotes
		}
		options, err := BuildPollOptions(optionTexts)
		if err != nil {
			return poll, err
		}
		poll.Options = options
	}

	poll.Question = question
	poll.ClosingAt = closingAt

	return e.Polls.Save(poll)
}

// DeletePoll removes the poll together with every vote cast on it.
func (e *VotingEngine) DeletePoll(id uint) error {
	if err := e.Polls.Delete(id); err != nil {
		return err
	}

	e.FlushPollMetric(id)
	return nil
}
