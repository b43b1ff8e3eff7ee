package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dailycal/internal/catalog"
	"github.com/julianstephens/dailycal/internal/cli"
	"github.com/julianstephens/dailycal/internal/config"
	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/daily"
	apperrors "github.com/julianstephens/dailycal/internal/errors"
	"github.com/julianstephens/dailycal/internal/keyring"
	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/random"
	"github.com/julianstephens/dailycal/internal/starter"
	"github.com/julianstephens/dailycal/internal/storage"
	"github.com/julianstephens/dailycal/internal/storage/postgres"
	"github.com/julianstephens/dailycal/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Database string `help:"Database path (.db for SQLite, .json for a JSON file) or PostgreSQL connection string. Use 'postgresql://' alone to read it from the OS keyring." default:"${database}"`
	Debug    bool   `help:"Log debug output to stderr." default:"${debug}"`
	Levels   string `name:"catalog" help:"Level catalog YAML. Defaults to the built-in catalog." default:"${catalog}"`
	Seed     int64  `help:"Seed for random level picks. Zero draws a fresh seed." default:"${seed}"`
	Starter  string `help:"Where started levels are sent." enum:"print,host" default:"${starter}"`

	Init     cli.InitCmd     `cmd:"" help:"Initialize storage and the registration date."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Month    cli.MonthCmd    `cmd:"" help:"Show the daily calendar." default:"1"`
	Play     cli.PlayCmd     `cmd:"" help:"Start or resume a daily level."`
	Complete cli.CompleteCmd `cmd:"" help:"Mark a daily level completed."`
	Status   cli.StatusCmd   `cmd:"" help:"Show profile and today's progress."`
	Watch    cli.WatchCmd    `cmd:"" help:"Show the calendar and count down to the next day."`
	Catalog  cli.CatalogCmd  `cmd:"" help:"List the level presets."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Delete a secret from the OS keyring."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Check the OS keyring."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	starterDefault := "print"
	if cfg.StarterURL != "" {
		starterDefault = "host"
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily challenge calendar: one level per day since registration."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"database": cfg.Database,
			"debug":    strconv.FormatBool(cfg.Debug),
			"catalog":  cfg.CatalogPath,
			"seed":     strconv.FormatInt(cfg.Seed, 10),
			"starter":  starterDefault,
		},
	)

	dir, err := config.Dir(CLI.Database)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: dir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	defer logger.Close()

	cat, err := catalog.Load(CLI.Levels)
	if err != nil {
		apperrors.Exit(err)
	}

	rnd, err := random.New(CLI.Seed)
	if err != nil {
		apperrors.Exit(err)
	}

	appCtx := &cli.Context{
		Catalog: cat,
		Starter: newStarter(cfg),
		Clock:   daily.SystemClock{},
		Rand:    rnd,
		Tick:    cfg.TickInterval,
	}

	// Keyring commands must work before any database is reachable.
	command := ctx.Command()
	if !strings.HasPrefix(command, "keyring") {
		store, err := openStore(CLI.Database)
		if err != nil {
			apperrors.Exit(err)
		}
		defer store.Close()
		appCtx.Store = store

		if !managesStore(command) {
			if err := store.Load(); err != nil {
				store.Close()
				apperrors.Exit(err)
			}
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
		apperrors.Exit(err)
	}
}

// managesStore reports whether the command loads or creates the store itself.
func managesStore(command string) bool {
	switch command {
	case "init", "doctor", "catalog":
		return true
	}
	return false
}

func openStore(database string) (storage.Provider, error) {
	if config.IsPostgres(database) {
		connStr, err := connectionString(database)
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	path, err := config.ExpandPath(database)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// connectionString resolves a bare scheme through the OS keyring and rejects
// connection strings that carry a password.
func connectionString(database string) (string, error) {
	if database == "postgres://" || database == "postgresql://" {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return "", fmt.Errorf("no connection string in keyring, store one with 'dailycal keyring set'")
			}
			return "", err
		}
		return connStr, nil
	}

	if err := postgres.ValidateConnString(database); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return "", apperrors.NewRecoverable(err,
				"keep the password in ~/.pgpass or PGPASSWORD, or store the full string with 'dailycal keyring set'")
		}
		return "", err
	}
	return database, nil
}

func newStarter(cfg config.Config) daily.Starter {
	if CLI.Starter != "host" {
		return starter.NewPrinter(os.Stdout)
	}

	secret := cfg.StarterSecret
	if secret == "" {
		if s, err := keyring.GetStarterSecret(); err == nil {
			secret = s
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("failed to read game host secret from keyring", "error", err)
		}
	}
	return starter.NewWebhook(cfg.StarterURL, secret)
}
