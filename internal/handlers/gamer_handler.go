package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type GamerHandler struct {
	gamerService *services.GamerService
}

func NewGamerHandler(gamerService *services.GamerService) *GamerHandler {
	return &GamerHandler{gamerService: gamerService}
}

func (h *GamerHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateGamerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	gamer, err := h.gamerService.CreateGamer(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewGamerResponse(gamer))
}

// List returns all gamers, or the owners of matching games when title or
// platform is given.
func (h *GamerHandler) List(c *fiber.Ctx) error {
	gamers, err := h.gamerService.ListGamers(c.UserContext(), services.OwnershipFilter{
		Title:    c.Query("title"),
		Platform: c.Query("platform"),
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGamerList(gamers))
}

func (h *GamerHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	gamer, err := h.gamerService.GetGamer(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGamerResponse(gamer))
}

func (h *GamerHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	var req dto.UpdateGamerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	gamer, err := h.gamerService.UpdateGamer(c.UserContext(), id, services.GamerUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGamerResponse(gamer))
}

func (h *GamerHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	if err := h.gamerService.DeleteGamer(c.UserContext(), id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GamerHandler) Games(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	games, err := h.gamerService.GamerGames(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGameList(games))
}

func (h *GamerHandler) AssignGame(c *fiber.Ctx) error {
	gamerID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	gameID, ok := paramID(c, "game_id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}

	game, err := h.gamerService.AssignGameToGamer(c.UserContext(), gamerID, gameID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGameResponse(game))
}

func (h *GamerHandler) RemoveGame(c *fiber.Ctx) error {
	gamerID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	gameID, ok := paramID(c, "game_id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}

	if err := h.gamerService.RemoveGameFromGamer(c.UserContext(), gamerID, gameID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
