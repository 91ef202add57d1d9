package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is a tradeable item. SwapID is nil while the game is available.
// The (swap_id, title, platform) unique index keeps duplicate editions out
// of a single swap; unlinked games have a NULL swap_id and never collide.
type Game struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null;index;uniqueIndex:idx_games_swap_edition,priority:2" json:"title"`
	Platform  string     `gorm:"size:255;not null;uniqueIndex:idx_games_swap_edition,priority:3" json:"platform"`
	GamerID   *uuid.UUID `gorm:"type:uuid;index" json:"gamer_id"`
	SwapID    *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_games_swap_edition,priority:1" json:"swap_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (Game) TableName() string {
	return "games"
}

// Available reports whether the game can be linked to a swap.
func (g Game) Available() bool {
	return g.SwapID == nil
}

// OwnedBy reports whether gamerID owns the game.
func (g Game) OwnedBy(gamerID uuid.UUID) bool {
	return g.GamerID != nil && *g.GamerID == gamerID
}

// InSwap reports whether the game is linked to swapID.
func (g Game) InSwap(swapID uuid.UUID) bool {
	return g.SwapID != nil && *g.SwapID == swapID
}

// Edition identifies games that cannot be traded together.
type Edition struct {
	Title    string
	Platform string
}

func (g Game) Edition() Edition {
	return Edition{Title: g.Title, Platform: g.Platform}
}
