package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/gameswap-backend/internal/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSwap(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	assert.Equal(t, days(14), swap.Returns())
	require.Len(t, swap.Games, 2)
	require.Len(t, swap.Participants, 2)
	assert.Equal(t, s.a.ID, swap.Participants[0].GamerID)
	assert.Equal(t, models.RoleProposer, swap.Participants[0].Role)
	assert.Equal(t, "Alice", swap.Participants[0].Gamer.Name)
	assert.Equal(t, s.b.ID, swap.Participants[1].GamerID)
	assert.Equal(t, models.RoleAcceptor, swap.Participants[1].Role)

	assert.True(t, f.reload(t, s.g1).InSwap(swap.ID))
	assert.True(t, f.reload(t, s.g2).InSwap(swap.ID))

	sent := f.pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.EventSwapCreated, sent[0].Event)
	assert.Equal(t, swap.ID, sent[0].SwapID)
	assert.Contains(t, sent[0].Message, "2026-03-15")
}

func TestCreateSwapIgnoresClockTimeOfReturnDate(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	late := time.Date(2026, time.March, 2, 23, 59, 0, 0, time.UTC)
	swap, err := f.swaps.CreateSwap(f.ctx, s.input(late))
	require.NoError(t, err)
	assert.Equal(t, days(1), swap.Returns())
}

func TestCreateSwapValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, s scenario, in *CreateSwapInput)
		wantErr error
	}{
		{
			name: "same gamer on both sides",
			mutate: func(_ *fixture, s scenario, in *CreateSwapInput) {
				in.AcceptorID = s.a.ID
			},
			wantErr: ErrInvalidParticipants,
		},
		{
			name: "game offered by both sides",
			mutate: func(_ *fixture, s scenario, in *CreateSwapInput) {
				in.AcceptorGameIDs = append(in.AcceptorGameIDs, s.g1.ID)
			},
			wantErr: ErrDuplicateGameReference,
		},
		{
			name: "return date today",
			mutate: func(_ *fixture, _ scenario, in *CreateSwapInput) {
				in.ReturnDate = today
			},
			wantErr: ErrInvalidReturnDate,
		},
		{
			name: "return date in the past",
			mutate: func(_ *fixture, _ scenario, in *CreateSwapInput) {
				in.ReturnDate = days(-3)
			},
			wantErr: ErrInvalidReturnDate,
		},
		{
			name: "unknown acceptor",
			mutate: func(_ *fixture, _ scenario, in *CreateSwapInput) {
				in.AcceptorID = uuid.New()
			},
			wantErr: ErrGamerNotFound,
		},
		{
			name: "unknown game",
			mutate: func(_ *fixture, _ scenario, in *CreateSwapInput) {
				in.ProposerGameIDs = append(in.ProposerGameIDs, uuid.New())
			},
			wantErr: ErrGameNotFound,
		},
		{
			name: "proposer offers a game they do not own",
			mutate: func(f *fixture, s scenario, in *CreateSwapInput) {
				in.ProposerGameIDs = []uuid.UUID{s.g2.ID}
				in.AcceptorGameIDs = []uuid.UUID{s.g1.ID}
			},
			wantErr: ErrGameOwnershipMismatch,
		},
		{
			name: "acceptor offers nothing",
			mutate: func(_ *fixture, _ scenario, in *CreateSwapInput) {
				in.AcceptorGameIDs = nil
			},
			wantErr: ErrInsufficientGames,
		},
		{
			name: "unowned game",
			mutate: func(f *fixture, _ scenario, in *CreateSwapInput) {
				orphan, err := f.games.CreateGame(f.ctx, CreateGameInput{Title: "Pong", Platform: "Atari"})
				if err != nil {
					panic(err)
				}
				in.AcceptorGameIDs = append(in.AcceptorGameIDs, orphan.ID)
			},
			wantErr: ErrGameOwnershipMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.scenario(t)
			in := s.input(days(14))
			tt.mutate(f, s, &in)

			_, err := f.swaps.CreateSwap(f.ctx, in)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err) || IsNotFound(err))
			assert.Zero(t, f.swapCount(t))
			assert.Empty(t, f.pub.Sent())
		})
	}
}

func TestCreateSwapFirstViolationWins(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	in := s.input(days(-1))
	in.AcceptorID = s.a.ID
	in.AcceptorGameIDs = []uuid.UUID{s.g1.ID}
	_, err := f.swaps.CreateSwap(f.ctx, in)
	require.ErrorIs(t, err, ErrInvalidParticipants)

	in = s.input(days(-1))
	in.AcceptorGameIDs = []uuid.UUID{s.g1.ID}
	_, err = f.swaps.CreateSwap(f.ctx, in)
	require.ErrorIs(t, err, ErrDuplicateGameReference)

	in = s.input(days(-1))
	in.AcceptorID = uuid.New()
	_, err = f.swaps.CreateSwap(f.ctx, in)
	require.ErrorIs(t, err, ErrInvalidReturnDate)
}

func TestCreateSwapDuplicateEditionRollsBack(t *testing.T) {
	f := newFixture(t)
	a := f.gamer(t, "Alice")
	b := f.gamer(t, "Bob")
	g1 := f.game(t, a, "Sonic The Hedgehog", "SEGA Mega Drive")
	g2 := f.game(t, b, "Sonic The Hedgehog", "SEGA Mega Drive")

	_, err := f.swaps.CreateSwap(f.ctx, CreateSwapInput{
		ProposerID:      a.ID,
		ProposerGameIDs: []uuid.UUID{g1.ID},
		AcceptorID:      b.ID,
		AcceptorGameIDs: []uuid.UUID{g2.ID},
		ReturnDate:      days(14),
	})
	require.ErrorIs(t, err, ErrDuplicateGameEdition)

	assert.Zero(t, f.swapCount(t))
	assert.True(t, f.reload(t, g1).Available())
	assert.True(t, f.reload(t, g2).Available())
}

func TestSameEditionOnDifferentPlatformsIsAllowed(t *testing.T) {
	f := newFixture(t)
	a := f.gamer(t, "Alice")
	b := f.gamer(t, "Bob")
	g1 := f.game(t, a, "Tetris", "GAME BOY")
	g2 := f.game(t, b, "Tetris", "NES")

	swap, err := f.swaps.CreateSwap(f.ctx, CreateSwapInput{
		ProposerID:      a.ID,
		ProposerGameIDs: []uuid.UUID{g1.ID},
		AcceptorID:      b.ID,
		AcceptorGameIDs: []uuid.UUID{g2.ID},
		ReturnDate:      days(3),
	})
	require.NoError(t, err)
	assert.Len(t, swap.Games, 2)
}

func TestGameLinkableAgainAfterSwapDeleted(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)
	c := f.gamer(t, "Carol")
	g3 := f.game(t, c, "Zelda", "NES")

	first, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	second := CreateSwapInput{
		ProposerID:      s.a.ID,
		ProposerGameIDs: []uuid.UUID{s.g1.ID},
		AcceptorID:      c.ID,
		AcceptorGameIDs: []uuid.UUID{g3.ID},
		ReturnDate:      days(10),
	}
	_, err = f.swaps.CreateSwap(f.ctx, second)
	require.ErrorIs(t, err, ErrGameAlreadyInSwap)
	assert.True(t, f.reload(t, g3).Available(), "failed create must not link any game")

	require.NoError(t, f.swaps.DeleteSwap(f.ctx, first.ID))

	swap, err := f.swaps.CreateSwap(f.ctx, second)
	require.NoError(t, err)
	assert.Len(t, swap.Games, 2)
}

func TestDeleteSwapDetachesGames(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	require.NoError(t, f.swaps.DeleteSwap(f.ctx, swap.ID))

	_, err = f.swaps.GetSwap(f.ctx, swap.ID)
	require.ErrorIs(t, err, ErrSwapNotFound)
	assert.True(t, f.reload(t, s.g1).Available())
	assert.True(t, f.reload(t, s.g2).Available())

	var participants int64
	require.NoError(t, f.db.Model(&models.SwapParticipant{}).Count(&participants).Error)
	assert.Zero(t, participants)

	err = f.swaps.DeleteSwap(f.ctx, swap.ID)
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		offset int
		want   bool
	}{
		{offset: -1, want: true},
		{offset: 0, want: true},
		{offset: 1, want: true},
		{offset: 6, want: true},
		{offset: 7, want: true},
		{offset: 8, want: false},
		{offset: 30, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDue(days(tt.offset), today, DueThresholdDays), "offset %d", tt.offset)
	}

	// Clock time within the day does not matter.
	assert.True(t, IsDue(days(7), today.Add(23*time.Hour), DueThresholdDays))
}

func TestGetSwapPublishesDueWarning(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(9)))
	require.NoError(t, err)
	f.pub.Reset()

	got, err := f.swaps.GetSwap(f.ctx, swap.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.ID, got.ID)
	assert.Empty(t, f.pub.Sent())

	// Due is derived on every read, not stored.
	f.clock.Advance(48 * time.Hour)
	got, err = f.swaps.GetSwap(f.ctx, swap.ID)
	require.NoError(t, err)
	assert.Len(t, got.Games, 2)
	assert.True(t, f.swaps.IsDue(got))
	assert.Equal(t, []notify.Event{notify.EventSwapDue}, f.pub.Events())
	assert.Contains(t, f.pub.Sent()[0].Message, "due by 2026-03-10")

	_, err = f.swaps.GetSwap(f.ctx, uuid.New())
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestSwapGamersAndGames(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(20)))
	require.NoError(t, err)

	gamers, err := f.swaps.SwapGamers(f.ctx, swap.ID)
	require.NoError(t, err)
	require.Len(t, gamers, 2)
	assert.Equal(t, s.a.ID, gamers[0].ID)
	assert.Equal(t, s.b.ID, gamers[1].ID)

	games, err := f.swaps.SwapGames(f.ctx, swap.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Sonic The Hedgehog", games[0].Title)
	assert.Equal(t, "Super Mario Land", games[1].Title)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	a := f.gamer(t, "Alice")
	b := f.gamer(t, "Bob")

	create := func(n, returnIn int) *models.Swap {
		ga := f.game(t, a, "Game A", string(rune('A'+n)))
		gb := f.game(t, b, "Game B", string(rune('A'+n)))
		swap, err := f.swaps.CreateSwap(f.ctx, CreateSwapInput{
			ProposerID:      a.ID,
			ProposerGameIDs: []uuid.UUID{ga.ID},
			AcceptorID:      b.ID,
			AcceptorGameIDs: []uuid.UUID{gb.ID},
			ReturnDate:      days(returnIn),
		})
		require.NoError(t, err)
		return swap
	}

	longGone := create(0, 2)
	yesterday := create(1, 4)
	dueToday := create(2, 5)
	later := create(3, 6)

	f.clock.Set(days(5).Add(time.Minute))
	f.pub.Reset()

	removed, err := f.swaps.SweepExpired(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	for _, gone := range []*models.Swap{longGone, yesterday} {
		_, err := f.swaps.GetSwap(f.ctx, gone.ID)
		require.ErrorIs(t, err, ErrSwapNotFound)
		for _, g := range gone.Games {
			assert.True(t, f.reload(t, &g).Available(), "games of expired swaps are freed")
		}
	}
	for _, kept := range []*models.Swap{dueToday, later} {
		got, err := f.swaps.GetSwap(f.ctx, kept.ID)
		require.NoError(t, err)
		assert.Len(t, got.Games, 2)
	}

	var games int64
	require.NoError(t, f.db.Model(&models.Game{}).Count(&games).Error)
	assert.EqualValues(t, 8, games, "sweeping never deletes games")

	expired := 0
	for _, e := range f.pub.Events() {
		if e == notify.EventSwapExpired {
			expired++
		}
	}
	assert.Equal(t, 2, expired)

	removed, err = f.swaps.SweepExpired(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestUpdateSwap(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	next := days(21)
	updated, err := f.swaps.UpdateSwap(f.ctx, swap.ID, SwapUpdate{ReturnDate: &next})
	require.NoError(t, err)
	assert.Equal(t, days(21), updated.Returns())
	assert.Len(t, updated.Games, 2)

	unchanged, err := f.swaps.UpdateSwap(f.ctx, swap.ID, SwapUpdate{})
	require.NoError(t, err)
	assert.Equal(t, days(21), unchanged.Returns())

	past := today
	_, err = f.swaps.UpdateSwap(f.ctx, swap.ID, SwapUpdate{ReturnDate: &past})
	require.ErrorIs(t, err, ErrInvalidReturnDate)

	_, err = f.swaps.UpdateSwap(f.ctx, uuid.New(), SwapUpdate{ReturnDate: &next})
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestListSwaps(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swaps, err := f.swaps.ListSwaps(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, swaps)

	_, err = f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	swaps, err = f.swaps.ListSwaps(f.ctx)
	require.NoError(t, err)
	require.Len(t, swaps, 1)
	assert.Len(t, swaps[0].Games, 2)
	assert.Len(t, swaps[0].Participants, 2)
}

func TestAssignParticipant(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)
	c := f.gamer(t, "Carol")

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	_, err = f.swaps.AssignParticipant(f.ctx, swap.ID, c.ID)
	require.ErrorIs(t, err, ErrSwapFull)

	again, err := f.swaps.AssignParticipant(f.ctx, swap.ID, s.a.ID)
	require.NoError(t, err, "re-assigning a participant is a no-op")
	assert.Len(t, again.Participants, 2)

	_, err = f.swaps.AssignParticipant(f.ctx, uuid.New(), c.ID)
	require.ErrorIs(t, err, ErrSwapNotFound)

	require.NoError(t, f.swaps.RemoveParticipant(f.ctx, swap.ID, s.a.ID))

	_, err = f.swaps.AssignParticipant(f.ctx, swap.ID, uuid.New())
	require.ErrorIs(t, err, ErrGamerNotFound)

	updated, err := f.swaps.AssignParticipant(f.ctx, swap.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, updated.Participants, 2)
	p, ok := updated.Participant(c.ID)
	require.True(t, ok)
	assert.Equal(t, models.RoleProposer, p.Role, "newcomer takes the vacant role")
}

func TestRemoveParticipantDetachesTheirGames(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	require.NoError(t, f.swaps.RemoveParticipant(f.ctx, swap.ID, s.a.ID))

	assert.True(t, f.reload(t, s.g1).Available())
	assert.True(t, f.reload(t, s.g2).InSwap(swap.ID))

	got, err := f.swaps.GetSwap(f.ctx, swap.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, s.b.ID, got.Participants[0].GamerID)
	require.Len(t, got.Games, 1)

	err = f.swaps.RemoveParticipant(f.ctx, swap.ID, s.a.ID)
	require.ErrorIs(t, err, ErrParticipantNotInSwap)

	err = f.swaps.RemoveParticipant(f.ctx, swap.ID, uuid.New())
	require.ErrorIs(t, err, ErrGamerNotFound)

	err = f.swaps.RemoveParticipant(f.ctx, uuid.New(), s.a.ID)
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestAssignGame(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)
	c := f.gamer(t, "Carol")
	g3 := f.game(t, s.a, "Streets of Rage", "SEGA Mega Drive")
	dupe := f.game(t, s.a, "Super Mario Land", "GAME BOY")
	carols := f.game(t, c, "Metroid", "NES")

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	updated, err := f.swaps.AssignGame(f.ctx, swap.ID, s.a.ID, g3.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Games, 3)

	again, err := f.swaps.AssignGame(f.ctx, swap.ID, s.a.ID, g3.ID)
	require.NoError(t, err, "re-assigning a linked game is a no-op")
	assert.Len(t, again.Games, 3)

	_, err = f.swaps.AssignGame(f.ctx, swap.ID, s.a.ID, dupe.ID)
	require.ErrorIs(t, err, ErrDuplicateGameEdition)

	_, err = f.swaps.AssignGame(f.ctx, swap.ID, s.a.ID, s.g2.ID)
	require.ErrorIs(t, err, ErrGameNotOwnedByGamer)

	_, err = f.swaps.AssignGame(f.ctx, swap.ID, c.ID, carols.ID)
	require.ErrorIs(t, err, ErrParticipantNotInSwap)

	_, err = f.swaps.AssignGame(f.ctx, swap.ID, s.a.ID, uuid.New())
	require.ErrorIs(t, err, ErrGameNotFound)

	_, err = f.swaps.AssignGame(f.ctx, swap.ID, uuid.New(), g3.ID)
	require.ErrorIs(t, err, ErrGamerNotFound)

	_, err = f.swaps.AssignGame(f.ctx, uuid.New(), s.a.ID, g3.ID)
	require.ErrorIs(t, err, ErrSwapNotFound)
}

func TestAssignGameAlreadyInAnotherSwap(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)
	c := f.gamer(t, "Carol")
	g3 := f.game(t, s.a, "Streets of Rage", "SEGA Mega Drive")
	g4 := f.game(t, c, "Metroid", "NES")

	_, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)
	other, err := f.swaps.CreateSwap(f.ctx, CreateSwapInput{
		ProposerID:      s.a.ID,
		ProposerGameIDs: []uuid.UUID{g3.ID},
		AcceptorID:      c.ID,
		AcceptorGameIDs: []uuid.UUID{g4.ID},
		ReturnDate:      days(5),
	})
	require.NoError(t, err)

	_, err = f.swaps.AssignGame(f.ctx, other.ID, s.a.ID, s.g1.ID)
	require.ErrorIs(t, err, ErrGameAlreadyInSwap)
}

func TestLinkGameLosesRace(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	// A second writer that validated before the first commit still cannot
	// claim the game.
	err = linkGame(f.db, uuid.New(), s.g1.ID)
	require.ErrorIs(t, err, ErrGameAlreadyInSwap)
	assert.True(t, f.reload(t, s.g1).InSwap(swap.ID))
}

func TestRemoveGame(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)
	loose := f.game(t, s.a, "Streets of Rage", "SEGA Mega Drive")

	swap, err := f.swaps.CreateSwap(f.ctx, s.input(days(14)))
	require.NoError(t, err)

	err = f.swaps.RemoveGame(f.ctx, swap.ID, s.a.ID, loose.ID)
	require.ErrorIs(t, err, ErrGameNotInSwap)

	err = f.swaps.RemoveGame(f.ctx, swap.ID, s.a.ID, s.g2.ID)
	require.ErrorIs(t, err, ErrGameNotOwnedByGamer)

	err = f.swaps.RemoveGame(f.ctx, swap.ID, s.a.ID, uuid.New())
	require.ErrorIs(t, err, ErrGameNotFound)

	require.NoError(t, f.swaps.RemoveGame(f.ctx, swap.ID, s.a.ID, s.g1.ID))

	g1 := f.reload(t, s.g1)
	assert.True(t, g1.Available())
	assert.True(t, g1.OwnedBy(s.a.ID), "removing from a swap keeps the game")
}

func TestNilPublisherIsDiscarded(t *testing.T) {
	f := newFixture(t)
	s := f.scenario(t)

	svc := NewSwapService(f.db, nil, 0).WithClock(f.clock.Now)
	assert.Equal(t, DueThresholdDays, svc.dueThreshold)

	_, err := svc.CreateSwap(f.ctx, s.input(days(3)))
	require.NoError(t, err)
}
