package services

import "errors"

var (
	ErrGamerNotFound = errors.New("gamer not found")
	ErrGameNotFound  = errors.New("game not found")
	ErrSwapNotFound  = errors.New("swap not found")
)

var (
	ErrInvalidParticipants    = errors.New("a swap must involve two different gamers")
	ErrDuplicateGameReference = errors.New("a game cannot be offered by both gamers")
	ErrInvalidReturnDate      = errors.New("return date must be in the future")
	ErrGameOwnershipMismatch  = errors.New("game is not owned by the gamer offering it")
	ErrInsufficientGames      = errors.New("a swap needs at least one game from each gamer")
	ErrDuplicateGameEdition   = errors.New("games with the same title and platform cannot be swapped together")
	ErrGameAlreadyInSwap      = errors.New("game is already part of a swap")
	ErrSwapFull               = errors.New("swap already has the maximum number of gamers")
	ErrParticipantNotInSwap   = errors.New("gamer is not part of the swap")
	ErrGameNotInSwap          = errors.New("game is not part of the swap")
	ErrGameNotOwnedByGamer    = errors.New("game is not owned by the gamer")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrInvalidGamer           = errors.New("gamer requires a name and a valid email")
	ErrInvalidGame            = errors.New("game requires a title and a platform")
)

var notFoundErrors = []error{ErrGamerNotFound, ErrGameNotFound, ErrSwapNotFound}

var validationErrors = []error{
	ErrInvalidParticipants,
	ErrDuplicateGameReference,
	ErrInvalidReturnDate,
	ErrGameOwnershipMismatch,
	ErrInsufficientGames,
	ErrDuplicateGameEdition,
	ErrGameAlreadyInSwap,
	ErrSwapFull,
	ErrParticipantNotInSwap,
	ErrGameNotInSwap,
	ErrGameNotOwnedByGamer,
	ErrDuplicateEmail,
	ErrInvalidGamer,
	ErrInvalidGame,
}

// IsNotFound reports whether err names a missing gamer, game or swap.
func IsNotFound(err error) bool {
	return matchesAny(err, notFoundErrors)
}

// IsValidation reports whether err is a rejected input or a broken swap invariant.
func IsValidation(err error) bool {
	return matchesAny(err, validationErrors)
}

func matchesAny(err error, targets []error) bool {
	if err == nil {
		return false
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
