package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lunarfall/ballot/pkg/internal/services"
)

var srv *services.VotingEngine

func MapAPIs(app *fiber.App, baseURL string, engine *services.VotingEngine) {
	srv = engine

	api := app.Group(baseURL).Name("API")
	{
		polls := api.Group("/polls").Name("Polls API")
		{
			polls.Get("/", listPolls)
			polls.Post("/", createPoll)
			polls.Get("/:pollId", getPoll)
			polls.Put("/:pollId", updatePoll)
			polls.Post("/:pollId/close", closePoll)
			polls.Post("/:pollId/reopen", reopenPoll)
			polls.Delete("/:pollId", deletePoll)

			polls.Post("/:pollId/votes", castVote)
			polls.Get("/:pollId/votes/me", getMyVote)
		}
	}
}
