package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/notify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MaxParticipants  = 2
	DueThresholdDays = 7
)

const dateLayout = "2006-01-02"

type CreateSwapInput struct {
	ProposerID      uuid.UUID
	ProposerGameIDs []uuid.UUID
	AcceptorID      uuid.UUID
	AcceptorGameIDs []uuid.UUID
	ReturnDate      time.Time
}

// SwapUpdate lists the fields that may change after creation. Nil fields are
// left untouched.
type SwapUpdate struct {
	ReturnDate *time.Time
}

// SwapService validates swaps and drives their lifecycle. Every exported
// operation runs in a single transaction; notifications go out only after
// the transaction commits.
type SwapService struct {
	db           *gorm.DB
	publisher    notify.Publisher
	dueThreshold int
	now          func() time.Time
}

func NewSwapService(db *gorm.DB, publisher notify.Publisher, dueThresholdDays int) *SwapService {
	if publisher == nil {
		publisher = notify.Discard{}
	}
	if dueThresholdDays <= 0 {
		dueThresholdDays = DueThresholdDays
	}
	return &SwapService{
		db:           db,
		publisher:    publisher,
		dueThreshold: dueThresholdDays,
		now:          time.Now,
	}
}

// WithClock replaces the time source used to decide what "today" is.
func (s *SwapService) WithClock(now func() time.Time) *SwapService {
	s.now = now
	return s
}

func (s *SwapService) Today() time.Time {
	return dateOf(s.now().UTC())
}

// dateOf keeps the calendar date of t and drops the clock time.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsDue reports whether returnDate falls within thresholdDays of today.
// Dates already in the past count as due.
func IsDue(returnDate, today time.Time, thresholdDays int) bool {
	days := int(dateOf(returnDate).Sub(dateOf(today)).Hours() / 24)
	return days <= thresholdDays
}

// IsDue is recomputed on every call; it is never stored.
func (s *SwapService) IsDue(swap *models.Swap) bool {
	return IsDue(swap.Returns(), s.Today(), s.dueThreshold)
}

func (s *SwapService) CreateSwap(ctx context.Context, in CreateSwapInput) (*models.Swap, error) {
	if in.ProposerID == in.AcceptorID {
		return nil, ErrInvalidParticipants
	}

	proposerGames := uniqueIDs(in.ProposerGameIDs)
	acceptorGames := uniqueIDs(in.AcceptorGameIDs)
	offeredByProposer := make(map[uuid.UUID]bool, len(proposerGames))
	for _, id := range proposerGames {
		offeredByProposer[id] = true
	}
	for _, id := range acceptorGames {
		if offeredByProposer[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateGameReference, id)
		}
	}

	returnDate := dateOf(in.ReturnDate)
	if !returnDate.After(s.Today()) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReturnDate, returnDate.Format(dateLayout))
	}

	var created *models.Swap
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range []uuid.UUID{in.ProposerID, in.AcceptorID} {
			if err := requireGamer(tx, id); err != nil {
				return err
			}
		}

		games, err := findGames(tx, append(append([]uuid.UUID{}, proposerGames...), acceptorGames...))
		if err != nil {
			return err
		}

		for _, g := range games {
			owner := in.AcceptorID
			if offeredByProposer[g.ID] {
				owner = in.ProposerID
			}
			if !g.OwnedBy(owner) {
				return fmt.Errorf("%w: game %s, gamer %s", ErrGameOwnershipMismatch, g.ID, owner)
			}
		}

		if len(proposerGames) == 0 || len(acceptorGames) == 0 || len(games) < 2 {
			return ErrInsufficientGames
		}

		if err := checkEditions(nil, games); err != nil {
			return err
		}

		for _, g := range games {
			if !g.Available() {
				return fmt.Errorf("%w: %s", ErrGameAlreadyInSwap, g.ID)
			}
		}

		swap := models.Swap{
			ID:         uuid.New(),
			ReturnDate: datatypes.Date(returnDate),
		}
		if err := tx.Omit(clause.Associations).Create(&swap).Error; err != nil {
			return fmt.Errorf("failed to create swap: %w", err)
		}

		participants := []models.SwapParticipant{
			{SwapID: swap.ID, GamerID: in.ProposerID, Role: models.RoleProposer},
			{SwapID: swap.ID, GamerID: in.AcceptorID, Role: models.RoleAcceptor},
		}
		if err := tx.Omit(clause.Associations).Create(&participants).Error; err != nil {
			return fmt.Errorf("failed to add swap participants: %w", err)
		}

		for _, g := range games {
			if err := linkGame(tx, swap.ID, g.ID); err != nil {
				return err
			}
		}

		created, err = loadSwap(tx, swap.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, notify.Notification{
		Event:      notify.EventSwapCreated,
		Message:    fmt.Sprintf("Created swap with id %s! Return games by %s.", created.ID, created.Returns().Format(dateLayout)),
		SwapID:     created.ID,
		ReturnDate: created.Returns(),
	})
	return created, nil
}

// GetSwap returns the swap and publishes a due warning when its return date
// is close. The warning does not change the returned value.
func (s *SwapService) GetSwap(ctx context.Context, swapID uuid.UUID) (*models.Swap, error) {
	swap, err := loadSwap(s.db.WithContext(ctx), swapID)
	if err != nil {
		return nil, err
	}

	if s.IsDue(swap) {
		s.publisher.Publish(ctx, notify.Notification{
			Event:      notify.EventSwapDue,
			Message:    fmt.Sprintf("Warning: Swap with id %s due by %s!", swap.ID, swap.Returns().Format(dateLayout)),
			SwapID:     swap.ID,
			ReturnDate: swap.Returns(),
		})
	}
	return swap, nil
}

func (s *SwapService) ListSwaps(ctx context.Context) ([]models.Swap, error) {
	var swaps []models.Swap
	err := withSwapRelations(s.db.WithContext(ctx)).
		Order("return_date ASC").
		Order("created_at ASC").
		Find(&swaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list swaps: %w", err)
	}
	return swaps, nil
}

// SwapGamers returns the participants of a swap, proposer first.
func (s *SwapService) SwapGamers(ctx context.Context, swapID uuid.UUID) ([]models.Gamer, error) {
	swap, err := s.GetSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	gamers := make([]models.Gamer, len(swap.Participants))
	for i, p := range swap.Participants {
		gamers[i] = p.Gamer
	}
	return gamers, nil
}

func (s *SwapService) SwapGames(ctx context.Context, swapID uuid.UUID) ([]models.Game, error) {
	swap, err := s.GetSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	return swap.Games, nil
}

func (s *SwapService) UpdateSwap(ctx context.Context, swapID uuid.UUID, upd SwapUpdate) (*models.Swap, error) {
	var updated *models.Swap
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSwap(tx, swapID); err != nil {
			return err
		}

		if upd.ReturnDate != nil {
			returnDate := dateOf(*upd.ReturnDate)
			if !returnDate.After(s.Today()) {
				return fmt.Errorf("%w: %s", ErrInvalidReturnDate, returnDate.Format(dateLayout))
			}
			err := tx.Model(&models.Swap{}).
				Where("id = ?", swapID).
				Update("return_date", datatypes.Date(returnDate)).Error
			if err != nil {
				return fmt.Errorf("failed to update swap: %w", err)
			}
		}

		var err error
		updated, err = loadSwap(tx, swapID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSwap removes the swap and frees its games.
func (s *SwapService) DeleteSwap(ctx context.Context, swapID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSwap(tx, swapID); err != nil {
			return err
		}
		return removeSwaps(tx, []uuid.UUID{swapID})
	})
}

// SweepExpired deletes every swap whose return date is before today and
// returns how many were removed. A swap returning today is kept.
func (s *SwapService) SweepExpired(ctx context.Context) (int, error) {
	today := s.Today()

	var expired []models.Swap
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := expiredSwaps(tx, today).Find(&expired).Error; err != nil {
			return fmt.Errorf("failed to find expired swaps: %w", err)
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(expired))
		for i, swap := range expired {
			ids[i] = swap.ID
		}
		return removeSwaps(tx, ids)
	})
	if err != nil {
		return 0, err
	}

	for _, swap := range expired {
		s.publisher.Publish(ctx, notify.Notification{
			Event:      notify.EventSwapExpired,
			Message:    fmt.Sprintf("Swap with id %s expired on %s and was removed.", swap.ID, swap.Returns().Format(dateLayout)),
			SwapID:     swap.ID,
			ReturnDate: swap.Returns(),
		})
	}
	return len(expired), nil
}

// AssignParticipant adds a gamer to the swap in the vacant role.
// Assigning a gamer who already takes part is a no-op.
func (s *SwapService) AssignParticipant(ctx context.Context, swapID, gamerID uuid.UUID) (*models.Swap, error) {
	var result *models.Swap
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swap, err := loadSwap(tx, swapID)
		if err != nil {
			return err
		}
		if _, ok := swap.Participant(gamerID); ok {
			result = swap
			return nil
		}
		if len(swap.Participants) >= MaxParticipants {
			return fmt.Errorf("%w: %s", ErrSwapFull, swapID)
		}
		if err := requireGamer(tx, gamerID); err != nil {
			return err
		}

		if err := addParticipant(tx, swapID, gamerID, swap.VacantRole()); err != nil {
			return err
		}

		result, err = loadSwap(tx, swapID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// addParticipant inserts the link row. A concurrent insert of the same gamer
// is a no-op; a concurrent insert that claimed the same role means the swap
// filled up underneath us.
func addParticipant(tx *gorm.DB, swapID, gamerID uuid.UUID, role string) error {
	participant := models.SwapParticipant{SwapID: swapID, GamerID: gamerID, Role: role}
	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swap_id"}, {Name: "gamer_id"}},
			DoNothing: true,
		}).
		Create(&participant).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrSwapFull, swapID)
	}
	if err != nil {
		return fmt.Errorf("failed to add swap participant: %w", err)
	}
	return nil
}

// RemoveParticipant drops the gamer from the swap and detaches every game of
// theirs that was linked to it.
func (s *SwapService) RemoveParticipant(ctx context.Context, swapID, gamerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swap, err := loadSwap(tx, swapID)
		if err != nil {
			return err
		}
		if err := requireGamer(tx, gamerID); err != nil {
			return err
		}
		if _, ok := swap.Participant(gamerID); !ok {
			return fmt.Errorf("%w: gamer %s, swap %s", ErrParticipantNotInSwap, gamerID, swapID)
		}

		if err := tx.Where("swap_id = ? AND gamer_id = ?", swapID, gamerID).Delete(&models.SwapParticipant{}).Error; err != nil {
			return fmt.Errorf("failed to remove swap participant: %w", err)
		}
		err = tx.Model(&models.Game{}).
			Where("swap_id = ? AND gamer_id = ?", swapID, gamerID).
			Update("swap_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach games: %w", err)
		}
		return nil
	})
}

// AssignGame links a participant's game to the swap. Linking a game that is
// already in this swap is a no-op.
func (s *SwapService) AssignGame(ctx context.Context, swapID, gamerID, gameID uuid.UUID) (*models.Swap, error) {
	var result *models.Swap
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swap, err := loadSwap(tx, swapID)
		if err != nil {
			return err
		}
		if err := requireGamer(tx, gamerID); err != nil {
			return err
		}
		if _, ok := swap.Participant(gamerID); !ok {
			return fmt.Errorf("%w: gamer %s, swap %s", ErrParticipantNotInSwap, gamerID, swapID)
		}
		game, err := findGame(tx, gameID)
		if err != nil {
			return err
		}
		if !game.OwnedBy(gamerID) {
			return fmt.Errorf("%w: game %s, gamer %s", ErrGameNotOwnedByGamer, gameID, gamerID)
		}

		if game.InSwap(swapID) {
			result = swap
			return nil
		}
		if !game.Available() {
			return fmt.Errorf("%w: %s", ErrGameAlreadyInSwap, gameID)
		}
		if err := checkEditions(swap.Games, []models.Game{*game}); err != nil {
			return err
		}
		if err := linkGame(tx, swapID, gameID); err != nil {
			return err
		}

		result, err = loadSwap(tx, swapID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveGame detaches the gamer's game from the swap. The game is kept.
func (s *SwapService) RemoveGame(ctx context.Context, swapID, gamerID, gameID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSwap(tx, swapID); err != nil {
			return err
		}
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
		if !game.InSwap(swapID) {
			return fmt.Errorf("%w: game %s, swap %s", ErrGameNotInSwap, gameID, swapID)
		}

		err = tx.Model(&models.Game{}).
			Where("id = ? AND swap_id = ?", gameID, swapID).
			Update("swap_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach game: %w", err)
		}
		return nil
	})
}

// --- store helpers ---

func withSwapRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("role DESC")
		}).
		Preload("Participants.Gamer").
		Preload("Games", byEdition())
}

func loadSwap(db *gorm.DB, swapID uuid.UUID) (*models.Swap, error) {
	var swap models.Swap
	err := withSwapRelations(db).First(&swap, "id = ?", swapID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSwapNotFound, swapID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load swap: %w", err)
	}
	return &swap, nil
}

func requireSwap(db *gorm.DB, swapID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Swap{}).Where("id = ?", swapID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to find swap: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrSwapNotFound, swapID)
	}
	return nil
}

func requireGamer(db *gorm.DB, gamerID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.Gamer{}).Where("id = ?", gamerID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to find gamer: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrGamerNotFound, gamerID)
	}
	return nil
}

func findGame(db *gorm.DB, gameID uuid.UUID) (*models.Game, error) {
	var game models.Game
	err := db.First(&game, "id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	return &game, nil
}

// findGames loads ids in the given order; the first missing id is reported.
func findGames(db *gorm.DB, ids []uuid.UUID) ([]models.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Game
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to find games: %w", err)
	}
	byID := make(map[uuid.UUID]models.Game, len(found))
	for _, g := range found {
		byID[g.ID] = g
	}

	games := make([]models.Game, 0, len(ids))
	for _, id := range ids {
		g, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		games = append(games, g)
	}
	return games, nil
}

// checkEditions fails when two games across existing and added share a
// title and platform.
func checkEditions(existing, added []models.Game) error {
	seen := make(map[models.Edition]uuid.UUID, len(existing)+len(added))
	for _, g := range existing {
		seen[g.Edition()] = g.ID
	}
	for _, g := range added {
		if other, ok := seen[g.Edition()]; ok && other != g.ID {
			return fmt.Errorf("%w: %q on %q", ErrDuplicateGameEdition, g.Title, g.Platform)
		}
		seen[g.Edition()] = g.ID
	}
	return nil
}

// linkGame claims the game for the swap only if it is still unlinked, so two
// concurrent swaps can never both take it.
func linkGame(tx *gorm.DB, swapID, gameID uuid.UUID) error {
	result := tx.Model(&models.Game{}).
		Where("id = ? AND swap_id IS NULL", gameID).
		Update("swap_id", swapID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: game %s", ErrDuplicateGameEdition, gameID)
		}
		return fmt.Errorf("failed to link game %s: %w", gameID, result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("%w: %s", ErrGameAlreadyInSwap, gameID)
	}
	return nil
}

// removeSwaps frees the games of the given swaps, then deletes them.
// expiredSwaps selects swaps whose return date is before today and locks
// them, so a concurrent UpdateSwap either commits first and drops out of the
// result or waits until the sweep has removed the row.
func expiredSwaps(tx *gorm.DB, today time.Time) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("return_date < ?", datatypes.Date(today))
}

func removeSwaps(tx *gorm.DB, ids []uuid.UUID) error {
	if err := tx.Model(&models.Game{}).Where("swap_id IN ?", ids).Update("swap_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach games: %w", err)
	}
	if err := tx.Where("swap_id IN ?", ids).Delete(&models.SwapParticipant{}).Error; err != nil {
		return fmt.Errorf("failed to remove swap participants: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.Swap{}).Error; err != nil {
		return fmt.Errorf("failed to delete swaps: %w", err)
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
