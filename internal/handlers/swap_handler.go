package handlers

import (
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SwapHandler struct {
	swapService *services.SwapService
}

func NewSwapHandler(swapService *services.SwapService) *SwapHandler {
	return &SwapHandler{swapService: swapService}
}

func (h *SwapHandler) render(swap *models.Swap) dto.SwapResponse {
	return dto.NewSwapResponse(swap, h.swapService.IsDue(swap))
}

func (h *SwapHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	returnDate, err := dto.ParseDate(req.ReturnDate)
	if err != nil {
		return badRequest(c, "return_date must be a date in YYYY-MM-DD form")
	}

	swap, err := h.swapService.CreateSwap(c.UserContext(), services.CreateSwapInput{
		ProposerID:      req.Proposer.ID,
		ProposerGameIDs: req.Proposer.GameIDs,
		AcceptorID:      req.Acceptor.ID,
		AcceptorGameIDs: req.Acceptor.GameIDs,
		ReturnDate:      returnDate,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.render(swap))
}

func (h *SwapHandler) List(c *fiber.Ctx) error {
	swaps, err := h.swapService.ListSwaps(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]dto.SwapResponse, len(swaps))
	for i := range swaps {
		out[i] = h.render(&swaps[i])
	}
	return c.JSON(out)
}

// Get returns the swap. Reading a swap close to its return date also sends
// the due warning.
func (h *SwapHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	swap, err := h.swapService.GetSwap(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(h.render(swap))
}

func (h *SwapHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	var req dto.UpdateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var upd services.SwapUpdate
	if req.ReturnDate != nil {
		returnDate, err := dto.ParseDate(*req.ReturnDate)
		if err != nil {
			return badRequest(c, "return_date must be a date in YYYY-MM-DD form")
		}
		upd.ReturnDate = &returnDate
	}

	swap, err := h.swapService.UpdateSwap(c.UserContext(), id, upd)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(h.render(swap))
}

func (h *SwapHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	if err := h.swapService.DeleteSwap(c.UserContext(), id); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SwapHandler) Gamers(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	gamers, err := h.swapService.SwapGamers(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGamerList(gamers))
}

func (h *SwapHandler) Games(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	games, err := h.swapService.SwapGames(c.UserContext(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.NewGameList(games))
}

func (h *SwapHandler) AssignGamer(c *fiber.Ctx) error {
	swapID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	gamerID, ok := paramID(c, "gamer_id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}

	swap, err := h.swapService.AssignParticipant(c.UserContext(), swapID, gamerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(h.render(swap))
}

func (h *SwapHandler) RemoveGamer(c *fiber.Ctx) error {
	swapID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	gamerID, ok := paramID(c, "gamer_id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}

	if err := h.swapService.RemoveParticipant(c.UserContext(), swapID, gamerID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SwapHandler) AssignGame(c *fiber.Ctx) error {
	swapID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	gamerID, ok := paramID(c, "gamer_id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	gameID, ok := paramID(c, "game_id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}

	swap, err := h.swapService.AssignGame(c.UserContext(), swapID, gamerID, gameID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(h.render(swap))
}

func (h *SwapHandler) RemoveGame(c *fiber.Ctx) error {
	swapID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid swap ID")
	}
	gamerID, ok := paramID(c, "gamer_id")
	if !ok {
		return badRequest(c, "Invalid gamer ID")
	}
	gameID, ok := paramID(c, "game_id")
	if !ok {
		return badRequest(c, "Invalid game ID")
	}

	if err := h.swapService.RemoveGame(c.UserContext(), swapID, gamerID, gameID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
