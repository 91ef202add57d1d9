package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleProposer = "proposer"
	RoleAcceptor = "acceptor"
)

// Swap is a time-boxed exchange of games between two gamers. Games are
// detached, not deleted, when the swap goes away.
type Swap struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ReturnDate   datatypes.Date    `gorm:"not null;index" json:"return_date"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Participants []SwapParticipant `gorm:"foreignKey:SwapID;constraint:OnDelete:CASCADE" json:"participants"`
	Games        []Game            `gorm:"foreignKey:SwapID;constraint:OnDelete:SET NULL" json:"games"`
}

func (s *Swap) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Swap) TableName() string {
	return "swaps"
}

// Returns is the return date as a UTC calendar day.
func (s Swap) Returns() time.Time {
	y, m, d := time.Time(s.ReturnDate).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Participant returns the participant row for gamerID, if any.
func (s Swap) Participant(gamerID uuid.UUID) (SwapParticipant, bool) {
	for _, p := range s.Participants {
		if p.GamerID == gamerID {
			return p, true
		}
	}
	return SwapParticipant{}, false
}

// VacantRole returns the role not yet held by a participant. The proposer
// slot is filled first.
func (s Swap) VacantRole() string {
	taken := make(map[string]bool, len(s.Participants))
	for _, p := range s.Participants {
		taken[p.Role] = true
	}
	if !taken[RoleProposer] {
		return RoleProposer
	}
	return RoleAcceptor
}

// SwapParticipant links a gamer to a swap. The composite primary key makes a
// duplicate link impossible at the store level; the (swap, role) index and the
// role check cap a swap at one proposer and one acceptor.
type SwapParticipant struct {
	SwapID    uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_swap_participants_role,priority:1" json:"-"`
	GamerID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"gamer_id"`
	Role      string    `gorm:"size:20;not null;uniqueIndex:idx_swap_participants_role,priority:2;check:chk_swap_participants_role,role IN ('proposer','acceptor')" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Gamer     Gamer     `gorm:"foreignKey:GamerID;constraint:OnDelete:CASCADE" json:"gamer"`
}

func (SwapParticipant) TableName() string {
	return "swap_participants"
}
