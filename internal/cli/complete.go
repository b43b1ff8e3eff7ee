package cli

import (
	"errors"
	"time"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/daily"
	apperrors "github.com/julianstephens/dailycal/internal/errors"
)

type CompleteCmd struct {
	Date string `arg:"" optional:"" help:"Day to mark completed (YYYY-MM-DD). Defaults to the last played day, then today."`
}

func (c *CompleteCmd) Run(ctx *Context) error {
	day, err := c.target(ctx)
	if err != nil {
		return err
	}

	if err := ctx.Ledger().MarkCompleted(day); err != nil {
		switch {
		case errors.Is(err, daily.ErrDayNotPlayed):
			return apperrors.NewRecoverable(err, "start it first with 'dailycal play "+calendar.FormatDay(day)+"'")
		case errors.Is(err, daily.ErrDayCompleted):
			return apperrors.NewRecoverable(err, calendar.FormatDay(day)+" is already done")
		}
		return err
	}

	ctx.printf("✓ Completed %s\n", calendar.FormatDay(day))
	ctx.PerformAutomaticBackup()
	return nil
}

func (c *CompleteCmd) target(ctx *Context) (day time.Time, err error) {
	if c.Date != "" {
		return calendar.ParseDate(c.Date)
	}
	last, ok, err := ctx.Ledger().LastPlayed()
	if err != nil {
		return day, err
	}
	if ok {
		return last, nil
	}
	return ctx.parseDay("")
}
