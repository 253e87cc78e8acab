package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lunarfall/ballot/pkg/internal/http/exts"
	"github.com/lunarfall/ballot/pkg/internal/models"
	"github.com/lunarfall/ballot/pkg/internal/services"
)

// remapEngineError translates engine outcomes into transport statuses.
// Unexpected storage failures stay opaque.
func remapEngineError(err error) error {
	switch {
	case errors.Is(err, services.ErrPollNotFound), errors.Is(err, services.ErrVoteNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrPollClosed):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyVoted), errors.Is(err, services.ErrPollHasVotes):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

func listPolls(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}

	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)
	openOnly := c.QueryBool("openOnly", false)

	polls, err := srv.ListPolls(openOnly, take, offset)
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(polls)
}

func getPoll(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	pollId, _ := c.ParamsInt("pollId")

	poll, err := srv.GetPoll(uint(pollId))
	if err != nil {
		return remapEngineError(err)
	}

	if srv.CanSeeResults(poll, user) {
		metric := srv.GetPollMetric(poll)
		poll.Metric = &metric
	}

	return c.JSON(poll)
}

func createPoll(c *fiber.Ctx) error {
	if err := exts.EnsureAdministrator(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	var data struct {
		Question  string     `json:"question" validate:"required"`
		Options   []string   `json:"options" validate:"required,min=2"`
		ClosingAt *time.Time `json:"closing_at"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := srv.NewPoll(data.Question, data.Options, data.ClosingAt, user)
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(poll)
}

func updatePoll(c *fiber.Ctx) error {
	if err := exts.EnsureAdministrator(c); err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	var data struct {
		Question  string     `json:"question" validate:"required"`
		Options   []string   `json:"options"`
		ClosingAt *time.Time `json:"closing_at"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := srv.EditPoll(uint(pollId), data.Question, data.Options, data.ClosingAt)
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(poll)
}

func closePoll(c *fiber.Ctx) error {
	if err := exts.EnsureAdministrator(c); err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	poll, err := srv.ClosePoll(uint(pollId))
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(poll)
}

func reopenPoll(c *fiber.Ctx) error {
	if err := exts.EnsureAdministrator(c); err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	poll, err := srv.ReopenPoll(uint(pollId))
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(poll)
}

func deletePoll(c *fiber.Ctx) error {
	if err := exts.EnsureAdministrator(c); err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	if err := srv.DeletePoll(uint(pollId)); err != nil {
		return remapEngineError(err)
	}

	return c.SendStatus(fiber.StatusOK)
}
