package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type GameHandler struct {
	gameService *services.GameService
}

func NewGameHandler(gameService *services.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

func (h *GameHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	game, err := h.gameService.CreateGame(c.UserContext(), services.CreateGameInput{
		Title:    req.Title,
		Platform: req.Platform,
		GamerID:  req.GamerID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewGameResponse(game))
}

func (h *GameHandler) List(c *fiber.Ctx) error {
	var available *bool
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "available must be true or false")
		}
		available = &v
	}

	games, err := h.gameService.ListGames(c.UserContext(), available)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGameList(games))
}

func (h *GameHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}
	game, err := h.gameService.GetGame(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGameResponse(game))
}

func (h *GameHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}
	var req dto.UpdateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	game, err := h.gameService.UpdateGame(c.UserContext(), id, services.GameUpdate{
		Title:    req.Title,
		Platform: req.Platform,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGameResponse(game))
}

func (h *GameHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}
	if err := h.gameService.DeleteGame(c.UserContext(), id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
