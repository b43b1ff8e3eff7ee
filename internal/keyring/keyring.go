// Package keyring keeps dailycal secrets in the OS credential store.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/dailycal/internal/constants"
)

// Accounts under the dailycal service.
const (
	AccountDatabase      = constants.DefaultKeyringUser
	AccountStarterSecret = "starter-secret"
)

var (
	ErrNotFound           = errors.New("secret not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrEmptySecret        = errors.New("secret cannot be empty")
)

// Get returns the secret stored for account, or ErrNotFound.
func Get(account string) (string, error) {
	v, err := keyring.Get(constants.AppName, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(account, secret string) error {
	if secret == "" {
		return ErrEmptySecret
	}
	if err := keyring.Set(constants.AppName, account, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", account, err)
	}
	return nil
}

func Delete(account string) error {
	if err := keyring.Delete(constants.AppName, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", account, err)
	}
	return nil
}

// GetConnectionString returns the stored PostgreSQL connection string.
func GetConnectionString() (string, error) {
	return Get(AccountDatabase)
}

func SetConnectionString(connStr string) error {
	return Set(AccountDatabase, connStr)
}

// GetStarterSecret returns the shared secret sent to the game host.
func GetStarterSecret() (string, error) {
	return Get(AccountStarterSecret)
}

// IsAvailable probes the keyring with a read; a miss still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
