package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Gamers *handlers.GamerHandler
	Games  *handlers.GameHandler
	Swaps  *handlers.SwapHandler
}

func Setup(app *fiber.App, h Handlers) {
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.Check)
	app.Get("/metrics", metrics.Handler())

	// Resource routes: 120 req/min per IP
	rateLimit := limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})

	gamers := app.Group("/gamers", rateLimit)
	gamers.Post("/", h.Gamers.Create)
	gamers.Get("/", h.Gamers.List)
	gamers.Get("/:id", h.Gamers.Get)
	gamers.Patch("/:id", h.Gamers.Update)
	gamers.Delete("/:id", h.Gamers.Delete)
	gamers.Get("/:id/games", h.Gamers.Games)
	gamers.Put("/:id/games/:game_id", h.Gamers.AssignGame)
	gamers.Delete("/:id/games/:game_id", h.Gamers.RemoveGame)

	games := app.Group("/games", rateLimit)
	games.Post("/", h.Games.Create)
	games.Get("/", h.Games.List)
	games.Get("/:id", h.Games.Get)
	games.Patch("/:id", h.Games.Update)
	games.Delete("/:id", h.Games.Delete)

	swaps := app.Group("/swaps", rateLimit)
	swaps.Post("/", h.Swaps.Create)
	swaps.Get("/", h.Swaps.List)
	swaps.Get("/:id", h.Swaps.Get)
	swaps.Patch("/:id", h.Swaps.Update)
	swaps.Delete("/:id", h.Swaps.Delete)
	swaps.Get("/:id/gamers", h.Swaps.Gamers)
	swaps.Get("/:id/games", h.Swaps.Games)
	swaps.Put("/:id/gamers/:gamer_id", h.Swaps.AssignGamer)
	swaps.Delete("/:id/gamers/:gamer_id", h.Swaps.RemoveGamer)
	swaps.Put("/:id/gamers/:gamer_id/games/:game_id", h.Swaps.AssignGame)
	swaps.Delete("/:id/gamers/:gamer_id/games/:game_id", h.Swaps.RemoveGame)
}
