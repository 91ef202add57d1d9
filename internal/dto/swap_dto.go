package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// SwapSide is one gamer and the games they put into a swap.
type SwapSide struct {
	ID      uuid.UUID   `json:"id"`
	GameIDs []uuid.UUID `json:"game_ids"`
}

type CreateSwapRequest struct {
	Proposer   SwapSide `json:"proposer"`
	Acceptor   SwapSide `json:"acceptor"`
	ReturnDate string   `json:"return_date"`
}

type UpdateSwapRequest struct {
	ReturnDate *string `json:"return_date"`
}

type SwapGamerResponse struct {
	GamerResponse
	Role string `json:"role"`
}

type SwapResponse struct {
	ID         uuid.UUID           `json:"id"`
	ReturnDate string              `json:"return_date"`
	Due        bool                `json:"due"`
	Gamers     []SwapGamerResponse `json:"gamers"`
	Games      []GameResponse      `json:"games"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewSwapResponse renders a swap loaded with its participants and games.
func NewSwapResponse(s *models.Swap, due bool) SwapResponse {
	gamers := make([]SwapGamerResponse, len(s.Participants))
	for i, p := range s.Participants {
		gamers[i] = SwapGamerResponse{
			GamerResponse: NewGamerResponse(&p.Gamer),
			Role:          p.Role,
		}
	}
	return SwapResponse{
		ID:         s.ID,
		ReturnDate: s.Returns().Format(DateLayout),
		Due:        due,
		Gamers:     gamers,
		Games:      NewGameList(s.Games),
		CreatedAt:  s.CreatedAt,
	}
}

// ParseDate reads a calendar date in YYYY-MM-DD form as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
