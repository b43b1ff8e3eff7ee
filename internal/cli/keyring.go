package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/dailycal/internal/keyring"
	"github.com/julianstephens/dailycal/internal/storage/postgres"
)

// KeyringSetCmd stores a secret in the OS keyring: the PostgreSQL connection
// string by default, or the game host secret with --starter.
type KeyringSetCmd struct {
	Value   string `arg:"" help:"PostgreSQL connection string, or the game host secret with --starter."`
	Starter bool   `help:"Store the shared secret sent to the game host."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	if cmd.Starter {
		if err := keyring.Set(keyring.AccountStarterSecret, cmd.Value); err != nil {
			return err
		}
		ctx.println("✓ Game host secret stored in OS keyring")
		return nil
	}

	if !strings.HasPrefix(cmd.Value, "postgres://") &&
		!strings.HasPrefix(cmd.Value, "postgresql://") &&
		!strings.Contains(cmd.Value, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.Value); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.Value); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.println("✓ Connection string stored successfully in OS keyring")
	ctx.println("  Set DAILYCAL_DATABASE=postgresql:// to use it")
	return nil
}

type KeyringDeleteCmd struct {
	Starter bool `help:"Delete the game host secret instead of the connection string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	account, label := keyring.AccountDatabase, "Connection string"
	if cmd.Starter {
		account, label = keyring.AccountStarterSecret, "Game host secret"
	}

	if err := keyring.Delete(account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", strings.ToLower(label))
		}
		return err
	}
	ctx.printf("✓ %s deleted from OS keyring\n", label)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.println("✓ OS keyring is available")

	for _, item := range []struct{ account, label string }{
		{keyring.AccountDatabase, "Connection string"},
		{keyring.AccountStarterSecret, "Game host secret"},
	} {
		v, err := keyring.Get(item.account)
		switch {
		case err == nil:
			ctx.printf("✓ %s is stored", item.label)
			if item.account == keyring.AccountDatabase {
				ctx.printf(": %s", maskPassword(v))
			}
			ctx.println()
		case errors.Is(err, keyring.ErrNotFound):
			ctx.printf("ℹ No %s stored\n", strings.ToLower(item.label))
		default:
			return err
		}
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		rest := connStr[idx+3:]
		if at := strings.LastIndex(rest, "@"); at != -1 {
			userInfo := rest[:at]
			if colon := strings.Index(userInfo, ":"); colon != -1 {
				return connStr[:idx+3] + userInfo[:colon] + ":****" + rest[at:]
			}
		}
		return connStr
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
