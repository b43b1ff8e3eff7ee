package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/countdown"
	"github.com/julianstephens/dailycal/internal/daily"
	"github.com/julianstephens/dailycal/internal/logger"
)

type WatchCmd struct {
	For time.Duration `help:"Stop watching after this long. Zero watches until interrupted." default:"0"`
}

func (c *WatchCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := sigCtx
	if c.For > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(sigCtx, c.For)
		defer cancel()
	}

	ledger := ctx.Ledger()
	var mu sync.Mutex
	timer := countdown.New(ledger.Now, ctx.Tick)
	lobby := daily.NewLobby(ledger, timer, daily.Hooks{
		OnTick: func(remaining time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(ctx.out(), "\rNext day in %s", calendar.FormatRemaining(remaining))
		},
		OnDayChange: func(v daily.MonthView, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("failed to refresh calendar", "error", err)
				fmt.Fprintf(ctx.out(), "\nrefresh failed: %v\n", err)
				return
			}
			fmt.Fprintf(ctx.out(), "\n\nA new day is available!\n%s", renderMonth(v, ledger.Now()))
		},
	})
	defer lobby.Close()

	mu.Lock()
	v, err := lobby.Show()
	if err == nil {
		fmt.Fprintf(ctx.out(), "%s", renderMonth(v, ledger.Now()))
	}
	mu.Unlock()
	if err != nil {
		return err
	}

	<-runCtx.Done()
	lobby.Close()

	mu.Lock()
	defer mu.Unlock()
	ctx.println()
	return nil
}
