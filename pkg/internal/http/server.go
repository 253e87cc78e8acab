package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jsoniter "github.com/json-iterator/go"
	"github.com/lunarfall/ballot/pkg/internal/http/api"
	"github.com/lunarfall/ballot/pkg/internal/http/exts"
	"github.com/lunarfall/ballot/pkg/internal/services"
)

func NewServer(srv *services.VotingEngine) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "Ballot",
		AppName:               "Ballot",
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: false,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(exts.AuthMiddleware)

	api.MapAPIs(app, "/api", srv)

	return app
}
