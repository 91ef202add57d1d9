package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gamer owns games and takes part in swaps. Deleting a gamer deletes the
// games they own.
type Gamer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:idx_gamers_email" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Games     []Game    `gorm:"foreignKey:GamerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (g *Gamer) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (Gamer) TableName() string {
	return "gamers"
}
