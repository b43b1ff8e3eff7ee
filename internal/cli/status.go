package cli

import (
	"github.com/julianstephens/dailycal/internal/calendar"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	ledger := ctx.Ledger()
	now := ledger.Now()

	registered, err := ledger.RegistrationDate()
	if err != nil {
		return err
	}
	if registered.IsZero() {
		ctx.println("Registered:    never (run 'dailycal init')")
	} else {
		ctx.printf("Registered:    %s\n", calendar.FormatDay(registered))
	}

	played, err := ledger.PlayedDays()
	if err != nil {
		return err
	}
	ctx.printf("Days played:   %d\n", played)

	status, rec, err := ledger.Lookup(now)
	if err != nil {
		return err
	}
	if rec != nil {
		ctx.printf("Today:         %s (level %d)\n", status, rec.LevelID)
	} else {
		ctx.printf("Today:         %s\n", status)
	}

	progress, err := ledger.MonthProgress(now, false)
	if err != nil {
		return err
	}
	last, err := ledger.LastAvailableDayInMonth(now)
	if err != nil {
		return err
	}
	ctx.printf("This month:    %3.0f%% completed\n", progress*100)
	if last != 0 {
		ctx.printf("Latest open day: %s\n", calendar.FormatDay(calendar.WithDay(now, last)))
	} else {
		ctx.println("Latest open day: none this month")
	}

	marker, ok, err := ledger.LastPlayed()
	if err != nil {
		return err
	}
	if ok {
		ctx.printf("Last played:   %s\n", calendar.FormatDay(marker))
	}

	ctx.printf("Next day in:   %s\n", calendar.FormatRemaining(calendar.UntilNextDay(now)))
	return nil
}
