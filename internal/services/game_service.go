package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateGameInput struct {
	Title    string
	Platform string
	GamerID  *uuid.UUID
}

type GameUpdate struct {
	Title    *string
	Platform *string
}

type GameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{db: db}
}

func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	title := strings.TrimSpace(in.Title)
	platform := strings.TrimSpace(in.Platform)
	if title == "" || platform == "" {
		return nil, ErrInvalidGame
	}

	db := s.db.WithContext(ctx)
	if in.GamerID != nil {
		if err := requireGamer(db, *in.GamerID); err != nil {
			return nil, err
		}
	}

	game := models.Game{
		ID:       uuid.New(),
		Title:    title,
		Platform: platform,
		GamerID:  in.GamerID,
	}
	if err := db.Create(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, fmt.Errorf("%w: %s", ErrGamerNotFound, *in.GamerID)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

func (s *GameService) GetGame(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	return findGame(s.db.WithContext(ctx), gameID)
}

// ListGames returns all games, or only available (unlinked) or unavailable
// ones when available is set.
func (s *GameService) ListGames(ctx context.Context, available *bool) ([]models.Game, error) {
	var games []models.Game
	err := s.db.WithContext(ctx).Scopes(byAvailability(available), byEdition()).Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// UpdateGame renames a game. A game in a swap cannot become a duplicate
// edition of another game in the same swap.
func (s *GameService) UpdateGame(ctx context.Context, gameID uuid.UUID, upd GameUpdate) (*models.Game, error) {
	var updated *models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		next := *game
		if upd.Title != nil {
			title := strings.TrimSpace(*upd.Title)
			if title == "" {
				return ErrInvalidGame
			}
			changes["title"] = title
			next.Title = title
		}
		if upd.Platform != nil {
			platform := strings.TrimSpace(*upd.Platform)
			if platform == "" {
				return ErrInvalidGame
			}
			changes["platform"] = platform
			next.Platform = platform
		}
		if len(changes) == 0 {
			updated = game
			return nil
		}

		if game.SwapID != nil {
			var siblings []models.Game
			if err := tx.Where("swap_id = ? AND id <> ?", *game.SwapID, gameID).Find(&siblings).Error; err != nil {
				return fmt.Errorf("failed to load swap games: %w", err)
			}
			if err := checkEditions(siblings, []models.Game{next}); err != nil {
				return err
			}
		}

		if err := tx.Model(game).Updates(changes).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: game %s", ErrDuplicateGameEdition, gameID)
			}
			return fmt.Errorf("failed to update game: %w", err)
		}
		updated, err = findGame(tx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GameService) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", gameID).Delete(&models.Game{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete game: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return nil
}
