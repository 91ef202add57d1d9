package dto

import (
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/google/uuid"
)

type CreateGameRequest struct {
	Title    string     `json:"title"`
	Platform string     `json:"platform"`
	GamerID  *uuid.UUID `json:"gamer_id"`
}

type UpdateGameRequest struct {
	Title    *string `json:"title"`
	Platform *string `json:"platform"`
}

type GameResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Platform  string     `json:"platform"`
	GamerID   *uuid.UUID `json:"gamer_id"`
	SwapID    *uuid.UUID `json:"swap_id"`
	Available bool       `json:"available"`
}

func NewGameResponse(g *models.Game) GameResponse {
	return GameResponse{
		ID:        g.ID,
		Title:     g.Title,
		Platform:  g.Platform,
		GamerID:   g.GamerID,
		SwapID:    g.SwapID,
		Available: g.Available(),
	}
}

func NewGameList(games []models.Game) []GameResponse {
	out := make([]GameResponse, len(games))
	for i := range games {
		out[i] = NewGameResponse(&games[i])
	}
	return out
}
