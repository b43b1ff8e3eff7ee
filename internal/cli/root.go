package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/dailycal/internal/backup"
	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/catalog"
	"github.com/julianstephens/dailycal/internal/daily"
	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/storage"
)

type Context struct {
	Store   storage.Provider
	Catalog *catalog.Catalog
	Starter daily.Starter
	Clock   daily.Clock
	Rand    daily.Rand
	Tick    time.Duration

	Out io.Writer
	In  io.Reader

	ledger *daily.Ledger
}

// Ledger returns the ledger over the loaded store, building it on first use.
func (c *Context) Ledger() *daily.Ledger {
	if c.ledger == nil {
		c.ledger = daily.NewLedger(c.Store, c.Catalog, c.Starter, c.Clock, c.Rand)
	}
	return c.ledger
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// PerformAutomaticBackup snapshots file-backed databases and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if !strings.HasSuffix(path, ".db") {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

// parseDay parses an optional YYYY-MM-DD argument, defaulting to today.
func (c *Context) parseDay(s string) (time.Time, error) {
	if s == "" || s == "today" {
		return calendar.Midnight(c.Ledger().Now()), nil
	}
	return calendar.ParseDate(s)
}
