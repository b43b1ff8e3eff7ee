package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/dailycal/internal/backup"
	"github.com/julianstephens/dailycal/internal/calendar"
	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/daily"
	"github.com/julianstephens/dailycal/internal/keyring"
)

// schemaStore is implemented by the SQL-backed stores.
type schemaStore interface {
	Migrate() error
	ValidateSchema() error
	SchemaStatus() (current, pending int, err error)
}

var errWarning = errors.New("warning")

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *Context) error
	// needsDB skips the check when the database could not be loaded.
	needsDB bool
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, needsDB: true},
	{name: "Ledger data", run: checkLedger, needsDB: true},
	{name: "Level catalog", run: checkCatalog},
	{name: "OS keyring", run: checkKeyring},
	{name: "Clock", run: checkClock},
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	failed := 0
	dbReachable := false
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.printf("%s %s: SKIPPED (database not reachable)\n", headerStyle.Render("⊘"), c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.printf("%s %s: OK\n", okStyle.Render("✓"), c.name)
			if i == 0 {
				dbReachable = true
			}
		case errors.Is(err, errWarning):
			ctx.printf("%s %s: WARNING\n", warnStyle.Render("⚠"), c.name)
			ctx.printf("   %s\n", strings.TrimSuffix(err.Error(), ": "+errWarning.Error()))
		default:
			ctx.printf("%s %s: FAIL\n", failStyle.Render("❌"), c.name)
			ctx.printf("   Error: %v\n", err)
			failed++
		}
	}

	ctx.println()
	if failed > 0 {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("%d health checks failed", failed)
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func warnf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, errWarning)...)
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetRegistrationDate(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	return s.ValidateSchema()
}

func checkMigrationsComplete(ctx *Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, pending, err := s.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("migrations incomplete: version %d with %d pending, run 'dailycal migrate'", current, pending)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	path := ctx.Store.GetConfigPath()
	if !strings.HasSuffix(path, ".db") {
		return nil
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return warnf("no backups found, consider creating one with 'dailycal backup create'")
	}
	return nil
}

// checkLedger verifies the profile and that every record points at a known
// level and lies between registration and today.
func checkLedger(ctx *Context) error {
	registered, err := ctx.Ledger().RegistrationDate()
	if err != nil {
		return err
	}
	if registered.IsZero() {
		return warnf("registration date is not set, run 'dailycal init'")
	}

	days, err := ctx.Store.GetAllDays()
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	today := calendar.Midnight(ctx.Ledger().Now())
	for _, d := range days {
		date := calendar.FromKey(d.Key)
		if date.After(today) {
			return fmt.Errorf("day %s is recorded in the future", calendar.FormatDay(date))
		}
		if d.Key%constants.SecondsPerDay != 0 {
			return fmt.Errorf("record key %d is not a UTC midnight", d.Key)
		}
		if _, err := ctx.Catalog.Lookup(d.LevelID); err != nil {
			return fmt.Errorf("day %s: %w", calendar.FormatDay(date), err)
		}
	}

	played, err := ctx.Store.GetPlayedDays()
	if err != nil {
		return err
	}
	if played < len(days) {
		return warnf("played days counter (%d) is below the number of records (%d)", played, len(days))
	}
	return nil
}

func checkCatalog(ctx *Context) error {
	for i, p := range ctx.Catalog.Presets() {
		if _, err := daily.RouteFor(p.Mode); err != nil {
			return fmt.Errorf("preset %d (level %d): %w", i+1, p.LevelID, err)
		}
	}
	return nil
}

func checkKeyring(ctx *Context) error {
	if !keyring.IsAvailable() {
		return warnf("OS keyring is not available, PostgreSQL credentials must come from the environment")
	}
	return nil
}

func checkClock(ctx *Context) error {
	now := ctx.Ledger().Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
