package cli

import (
	"github.com/julianstephens/dailycal/internal/daily"
)

type MonthCmd struct {
	Prev int `help:"Number of months to step back." default:"0"`
	Next int `help:"Number of months to step forward." default:"0"`
	Day  int `help:"Select a visible day of the shown month." default:"0"`
}

func (c *MonthCmd) Run(ctx *Context) error {
	lobby := daily.NewLobby(ctx.Ledger(), nil, daily.Hooks{})

	v, err := lobby.Show()
	if err != nil {
		return err
	}
	if v, err = c.navigate(lobby, v); err != nil {
		return err
	}

	if c.Day != 0 {
		sel, err := lobby.SelectDay(c.Day)
		if err != nil {
			return err
		}
		if v, err = lobby.Refresh(); err != nil {
			return err
		}
		ctx.printf("%s\n", renderMonth(v, ctx.Ledger().Now()))
		renderSelection(ctx.out(), sel)
		return nil
	}

	ctx.printf("%s", renderMonth(v, ctx.Ledger().Now()))
	return nil
}

func (c *MonthCmd) navigate(lobby *daily.Lobby, v daily.MonthView) (daily.MonthView, error) {
	var err error
	for i := 0; i < c.Prev; i++ {
		if v, err = lobby.PrevMonth(); err != nil {
			return v, err
		}
	}
	for i := 0; i < c.Next; i++ {
		if v, err = lobby.NextMonth(); err != nil {
			return v, err
		}
	}
	return v, nil
}
