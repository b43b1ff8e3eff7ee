package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/daily"
	apperrors "github.com/julianstephens/dailycal/internal/errors"
)

type PlayCmd struct {
	Date string `arg:"" optional:"" help:"Day to play (YYYY-MM-DD). Without it the lobby picks the day."`
}

func (c *PlayCmd) Run(ctx *Context) error {
	lobby := daily.NewLobby(ctx.Ledger(), nil, daily.Hooks{})
	if _, err := lobby.Show(); err != nil {
		return err
	}

	// An explicit date is started as-is so a finished day is reported
	// instead of silently falling back to another one.
	if c.Date != "" {
		if err := c.moveTo(lobby); err != nil {
			return playError(err)
		}
		a, err := ctx.Ledger().CreateOrResumeLevel(context.Background(), lobby.Cursor().Viewed())
		if err != nil {
			return playError(err)
		}
		renderAssignment(ctx.out(), &a)
		ctx.PerformAutomaticBackup()
		return nil
	}

	out, err := lobby.Play(context.Background())
	if err != nil {
		return playError(err)
	}
	if out.View != nil {
		ctx.printf("Moved to %s\n", out.View.Month.Format("January 2006"))
	}
	if out.AllCompleted {
		ctx.println("Every daily level is completed. Back to journey mode!")
		return nil
	}
	renderAssignment(ctx.out(), out.Assignment)
	ctx.PerformAutomaticBackup()
	return nil
}

// moveTo steps the lobby to the requested day through its navigation guards.
func (c *PlayCmd) moveTo(lobby *daily.Lobby) error {
	date, err := calendar.ParseDate(c.Date)
	if err != nil {
		return err
	}

	for calendar.BeforeByYearMonth(date, lobby.Cursor().Viewed()) {
		if _, err := lobby.PrevMonth(); err != nil {
			return err
		}
	}
	for calendar.AfterByYearMonth(date, lobby.Cursor().Viewed()) {
		if _, err := lobby.NextMonth(); err != nil {
			return err
		}
	}
	_, err = lobby.SelectDay(date.Day())
	return err
}

func playError(err error) error {
	switch {
	case errors.Is(err, daily.ErrDayCompleted):
		return apperrors.NewRecoverable(err, "pick another day with 'dailycal month'")
	case errors.Is(err, daily.ErrNavigationBlocked), errors.Is(err, daily.ErrDayOutOfRange):
		return apperrors.NewRecoverable(err, "only days between registration and today can be played")
	case errors.Is(err, daily.ErrUnknownGameMode):
		return fmt.Errorf("%w (check the level catalog with 'dailycal catalog')", err)
	default:
		return err
	}
}
