package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/storage"
)

type InitCmd struct {
	Force      bool   `help:"Delete an existing database before initialization."`
	Registered string `help:"Registration date (YYYY-MM-DD). Defaults to today."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil && !errors.Is(err, storage.ErrAlreadyInitialized) {
		return err
	}
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	ctx.printf("Initialized dailycal storage at: %s\n", ctx.Store.GetConfigPath())

	current, err := ctx.Ledger().RegistrationDate()
	if err != nil {
		return err
	}

	var at time.Time
	switch {
	case c.Registered != "":
		if at, err = calendar.ParseDate(c.Registered); err != nil {
			return err
		}
	case current.IsZero():
		at = ctx.Ledger().Now()
	default:
		ctx.printf("Registered on %s\n", calendar.FormatDay(current))
		return nil
	}

	if err := ctx.Ledger().Register(at); err != nil {
		if errors.Is(err, storage.ErrRegistrationSet) {
			return fmt.Errorf("%w (registered on %s)", err, calendar.FormatDay(current))
		}
		return err
	}
	ctx.printf("Registered on %s\n", calendar.FormatDay(at))
	return nil
}

func (c *InitCmd) reset(ctx *Context) error {
	path := ctx.Store.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.printf("Deleted existing database at: %s\n", path)
	return nil
}
