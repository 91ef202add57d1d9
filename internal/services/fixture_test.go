package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var today = testutil.Day(2026, time.March, 1)

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	clock  *testutil.Clock
	pub    *testutil.Publisher
	swaps  *SwapService
	gamers *GamerService
	games  *GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(today.Add(10 * time.Hour))
	pub := &testutil.Publisher{}
	return &fixture{
		ctx:    context.Background(),
		db:     db,
		clock:  clock,
		pub:    pub,
		swaps:  NewSwapService(db, pub, DueThresholdDays).WithClock(clock.Now),
		gamers: NewGamerService(db),
		games:  NewGameService(db),
	}
}

func (f *fixture) gamer(t *testing.T, name string) *models.Gamer {
	t.Helper()
	g, err := f.gamers.CreateGamer(f.ctx, name, strings.ToLower(name)+"@example.com")
	require.NoError(t, err)
	return g
}

func (f *fixture) game(t *testing.T, owner *models.Gamer, title, platform string) *models.Game {
	t.Helper()
	in := CreateGameInput{Title: title, Platform: platform}
	if owner != nil {
		id := owner.ID
		in.GamerID = &id
	}
	g, err := f.games.CreateGame(f.ctx, in)
	require.NoError(t, err)
	return g
}

func (f *fixture) reload(t *testing.T, game *models.Game) *models.Game {
	t.Helper()
	g, err := f.games.GetGame(f.ctx, game.ID)
	require.NoError(t, err)
	return g
}

func (f *fixture) swapCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Swap{}).Count(&n).Error)
	return n
}

// scenario is the two-gamer setup used throughout: A owns a Mega Drive game,
// B owns a Game Boy game.
type scenario struct {
	a, b   *models.Gamer
	g1, g2 *models.Game
}

func (f *fixture) scenario(t *testing.T) scenario {
	t.Helper()
	a := f.gamer(t, "Alice")
	b := f.gamer(t, "Bob")
	return scenario{
		a:  a,
		b:  b,
		g1: f.game(t, a, "Sonic The Hedgehog", "SEGA Mega Drive"),
		g2: f.game(t, b, "Super Mario Land", "GAME BOY"),
	}
}

func (s scenario) input(returnDate time.Time) CreateSwapInput {
	return CreateSwapInput{
		ProposerID:      s.a.ID,
		ProposerGameIDs: []uuid.UUID{s.g1.ID},
		AcceptorID:      s.b.ID,
		AcceptorGameIDs: []uuid.UUID{s.g2.ID},
		ReturnDate:      returnDate,
	}
}

func days(n int) time.Time {
	return today.AddDate(0, 0, n)
}
