package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/google/uuid"
)

type CreateGamerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateGamerRequest holds optional fields; absent fields are left as they are.
type UpdateGamerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type GamerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewGamerResponse(g *models.Gamer) GamerResponse {
	return GamerResponse{
		ID:        g.ID,
		Name:      g.Name,
		Email:     g.Email,
		CreatedAt: g.CreatedAt,
	}
}

func NewGamerList(gamers []models.Gamer) []GamerResponse {
	out := make([]GamerResponse, len(gamers))
	for i := range gamers {
		out[i] = NewGamerResponse(&gamers[i])
	}
	return out
}
