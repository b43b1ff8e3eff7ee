package postgres

import (
	"os"
	"testing"

	"github.com/julianstephens/dailycal/internal/storage"
	"github.com/julianstephens/dailycal/internal/storage/storagetest"
)

// TestStoreIntegration runs against a real database when DAILYCAL_TEST_POSTGRES is set, e.g.
// DAILYCAL_TEST_POSTGRES="postgres://dailycal@localhost:5432/dailycal_test?sslmode=disable"
func TestStoreIntegration(t *testing.T) {
	connStr := os.Getenv("DAILYCAL_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("DAILYCAL_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	storagetest.Run(t, func(t *testing.T) storage.Provider {
		s := New(connStr)
		if err := s.Init(); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		for _, stmt := range []string{"DELETE FROM daily_levels", "DELETE FROM settings"} {
			if _, err := s.db.Exec(stmt); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
		return s
	})
}
