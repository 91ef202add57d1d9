package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GamerUpdate struct {
	Name  *string
	Email *string
}

// OwnershipFilter narrows gamers to those owning a matching game. Empty
// fields are ignored.
type OwnershipFilter struct {
	Title    string
	Platform string
}

func (f OwnershipFilter) empty() bool {
	return f.Title == "" && f.Platform == ""
}

type GamerService struct {
	db *gorm.DB
}

func NewGamerService(db *gorm.DB) *GamerService {
	return &GamerService{db: db}
}

func (s *GamerService) CreateGamer(ctx context.Context, name, email string) (*models.Gamer, error) {
	name, email, err := normalizeGamer(name, email)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Gamer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	gamer := models.Gamer{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
	}
	if err := db.Create(&gamer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create gamer: %w", err)
	}
	return &gamer, nil
}

func (s *GamerService) GetGamer(ctx context.Context, gamerID uuid.UUID) (*models.Gamer, error) {
	var gamer models.Gamer
	err := s.db.WithContext(ctx).First(&gamer, "id = ?", gamerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGamerNotFound, gamerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gamer: %w", err)
	}
	return &gamer, nil
}

// ListGamers returns every gamer, or with a filter only the gamers owning a
// game that matches each provided field.
func (s *GamerService) ListGamers(ctx context.Context, filter OwnershipFilter) ([]models.Gamer, error) {
	query := s.db.WithContext(ctx).Model(&models.Gamer{})
	if !filter.empty() {
		owned := s.db.Model(&models.Game{}).Select("gamer_id").Where("gamer_id IS NOT NULL")
		if filter.Title != "" {
			owned = owned.Where("title = ?", filter.Title)
		}
		if filter.Platform != "" {
			owned = owned.Where("platform = ?", filter.Platform)
		}
		query = query.Where("id IN (?)", owned)
	}

	var gamers []models.Gamer
	if err := query.Order("name ASC").Order("email ASC").Find(&gamers).Error; err != nil {
		return nil, fmt.Errorf("failed to list gamers: %w", err)
	}
	return gamers, nil
}

func (s *GamerService) UpdateGamer(ctx context.Context, gamerID uuid.UUID, upd GamerUpdate) (*models.Gamer, error) {
	gamer, err := s.GetGamer(ctx, gamerID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrInvalidGamer
		}
		changes["name"] = name
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		if email != gamer.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.Gamer{}).Where("email = ? AND id <> ?", email, gamerID).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if count > 0 {
				return nil, ErrDuplicateEmail
			}
		}
		changes["email"] = email
	}
	if len(changes) == 0 {
		return gamer, nil
	}

	if err := s.db.WithContext(ctx).Model(gamer).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update gamer: %w", err)
	}
	return s.GetGamer(ctx, gamerID)
}

// DeleteGamer removes the gamer together with the games they own and their
// place in any swap.
func (s *GamerService) DeleteGamer(ctx context.Context, gamerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireGamer(tx, gamerID); err != nil {
			return err
		}
		if err := tx.Scopes(ownedBy(gamerID)).Delete(&models.Game{}).Error; err != nil {
			return fmt.Errorf("failed to delete gamer games: %w", err)
		}
		if err := tx.Where("gamer_id = ?", gamerID).Delete(&models.SwapParticipant{}).Error; err != nil {
			return fmt.Errorf("failed to remove gamer from swaps: %w", err)
		}
		if err := tx.Where("id = ?", gamerID).Delete(&models.Gamer{}).Error; err != nil {
			return fmt.Errorf("failed to delete gamer: %w", err)
		}
		return nil
	})
}

func (s *GamerService) GamerGames(ctx context.Context, gamerID uuid.UUID) ([]models.Game, error) {
	db := s.db.WithContext(ctx)
	if err := requireGamer(db, gamerID); err != nil {
		return nil, err
	}
	var games []models.Game
	if err := db.Scopes(ownedBy(gamerID), byEdition()).Find(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to list gamer games: %w", err)
	}
	return games, nil
}

// AssignGameToGamer makes the gamer the owner of the game. Ownership of a
// game that is part of a swap cannot change.
func (s *GamerService) AssignGameToGamer(ctx context.Context, gamerID, gameID uuid.UUID) (*models.Game, error) {
	var game *models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireGamer(tx, gamerID); err != nil {
			return err
		}
		var err error
		game, err = findGame(tx, gameID)
		if err != nil {
			return err
		}
		if game.OwnedBy(gamerID) {
			return nil
		}
		if !game.Available() {
			return fmt.Errorf("%w: %s", ErrGameAlreadyInSwap, gameID)
		}
		if err := tx.Model(game).Update("gamer_id", gamerID).Error; err != nil {
			return fmt.Errorf("failed to assign game: %w", err)
		}
		game, err = findGame(tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// RemoveGameFromGamer clears the game's owner. The game itself is kept.
func (s *GamerService) RemoveGameFromGamer(ctx context.Context, gamerID, gameID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireGamer(tx, gamerID); err != nil {
			return err
		}
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}
		if !game.OwnedBy(gamerID) {
			return fmt.Errorf("%w: game %s, gamer %s", ErrGameNotOwnedByGamer, gameID, gamerID)
		}
		if !game.Available() {
			return fmt.Errorf("%w: %s", ErrGameAlreadyInSwap, gameID)
		}
		if err := tx.Model(game).Update("gamer_id", nil).Error; err != nil {
			return fmt.Errorf("failed to remove game from gamer: %w", err)
		}
		return nil
	})
}

func normalizeGamer(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrInvalidGamer
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", ErrInvalidGamer, email)
	}
	return email, nil
}
