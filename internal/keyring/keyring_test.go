package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestConnectionStringRoundTrip(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://player@localhost:5432/dailycal?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() error = %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() error = %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestAccountsAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(AccountStarterSecret, "s3cret"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want ErrNotFound", err)
	}
	got, err := GetStarterSecret()
	if err != nil || got != "s3cret" {
		t.Errorf("GetStarterSecret() = %q, %v", got, err)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(AccountDatabase, ""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("Set(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Delete(AccountDatabase); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() on empty keyring error = %v, want ErrNotFound", err)
	}

	if err := SetConnectionString("host=localhost dbname=dailycal"); err != nil {
		t.Fatalf("SetConnectionString() error = %v", err)
	}
	if err := Delete(AccountDatabase); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Delete(), GetConnectionString() error = %v, want ErrNotFound", err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with the mock keyring")
	}
}
