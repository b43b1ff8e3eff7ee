// Package daily is the daily-challenge state engine: the ledger of played
// days, the month cursor and the lobby flow built on top of them.
package daily

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/julianstephens/dailycal/internal/models"
)

var (
	// ErrDayCompleted is returned when a completed day would be restarted or
	// completed again. Nothing is mutated.
	ErrDayCompleted = errors.New("day already completed")
	// ErrDayNotPlayed is returned when completing a day that was never started.
	ErrDayNotPlayed = errors.New("day has not been played")
	// ErrUnknownGameMode means a preset declares a mode no starter route exists
	// for. The catalog is misconfigured; callers must not retry.
	ErrUnknownGameMode   = errors.New("unknown game mode")
	ErrNavigationBlocked = errors.New("month navigation not allowed")
	ErrDayOutOfRange     = errors.New("day outside the visible range")
)

// Clock is the single source of "now".
type Clock interface {
	Now() time.Time
}

// Rand picks presets once the catalog has been played through.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Starter begins a level session. The engine never waits for the outcome.
type Starter interface {
	Start(ctx context.Context, req models.StartRequest) error
}

// Catalog is the ordered preset list, addressed by 1-based position.
type Catalog interface {
	Len() int
	At(pos int) (models.Preset, error)
	Lookup(levelID int) (models.Preset, error)
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var routes = map[models.GameMode]string{
	models.ModeDocku:  "docku-game",
	models.ModePuzzle: "puzzle-game",
}

// RouteFor returns the game state a mode is started in.
func RouteFor(mode models.GameMode) (string, error) {
	route, ok := routes[mode]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGameMode, mode)
	}
	return route, nil
}
