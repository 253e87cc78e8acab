package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lunarfall/ballot/pkg/internal/http/exts"
	"github.com/lunarfall/ballot/pkg/internal/models"
)

func castVote(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	pollId, _ := c.ParamsInt("pollId")

	var data struct {
		OptionID string `json:"option_id" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	vote, err := srv.SubmitVote(uint(pollId), data.OptionID, user)
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(vote)
}

func getMyVote(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	pollId, _ := c.ParamsInt("pollId")

	vote, err := srv.GetOwnVote(uint(pollId), user)
	if err != nil {
		return remapEngineError(err)
	}

	return c.JSON(vote)
}
