package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// byAvailability filters games by whether they are linked to a swap. A nil
// flag leaves the query unfiltered.
func byAvailability(available *bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case available == nil:
			return db
		case *available:
			return db.Where("swap_id IS NULL")
		default:
			return db.Where("swap_id IS NOT NULL")
		}
	}
}

func ownedBy(gamerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("gamer_id = ?", gamerID)
	}
}

func byEdition() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("title ASC").Order("platform ASC")
	}
}
