package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/dailycal/internal/storage"
	"github.com/julianstephens/dailycal/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "dailycal.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return newTestStore(t)
	})
}

func TestLoadRequiresInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := s.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailycal.db")

	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	if err := s.SetRegistrationDate(1709251200); err != nil {
		t.Fatalf("SetRegistrationDate() error = %v", err)
	}
	s.Close()

	again := NewStore(path)
	if err := again.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer again.Close()

	reg, err := again.GetRegistrationDate()
	if err != nil {
		t.Fatalf("GetRegistrationDate() error = %v", err)
	}
	if reg != 1709251200 {
		t.Errorf("registration date = %d, want 1709251200", reg)
	}

	current, pending, err := again.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus() error = %v", err)
	}
	if current < 1 || pending != 0 {
		t.Errorf("SchemaStatus() = (%d, %d), want applied schema with nothing pending", current, pending)
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailycal.db")
	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	s.Close()

	loaded := NewStore(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer loaded.Close()
	if loaded.GetDB() == nil {
		t.Fatal("GetDB() = nil after Load")
	}
	if got := loaded.GetConfigPath(); got != path {
		t.Errorf("GetConfigPath() = %q, want %q", got, path)
	}
}
