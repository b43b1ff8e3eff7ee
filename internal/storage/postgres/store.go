// Package postgres keeps the ledger in a dailycal schema of a shared
// PostgreSQL database.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/logger"
	"github.com/julianstephens/dailycal/internal/migration"
	"github.com/julianstephens/dailycal/internal/storage/sqlstore"
	"github.com/julianstephens/dailycal/migrations"
)

const uniqueViolation = "23505"

type Store struct {
	*sqlstore.DB
	connStr string
	sslmode bool
	db      *sql.DB
}

// New prepares a store for connStr. Nothing is dialled until Init or Load.
func New(connStr string) *Store {
	cs, err := parseConnString(connStr)
	if err != nil {
		logger.Warn("unparseable postgres connection string", "error", err)
		return &Store{connStr: connStr}
	}
	return &Store{
		connStr: cs.withSearchPath(constants.AppName),
		sslmode: cs.has("sslmode"),
	}
}

func (s *Store) connect() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if !s.sslmode && strings.Contains(err.Error(), "SSL is not enabled on the server") {
			return fmt.Errorf("failed to connect to database: %w (hint: add sslmode=disable to the connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	s.db = db
	s.DB = sqlstore.New(db, migration.Postgres, sub, isConflict)
	return nil
}

// Init creates the schema if needed and applies pending migrations.
func (s *Store) Init() error {
	if err := s.connect(); err != nil {
		return err
	}
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load connects and checks the schema is one this binary understands.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.connect(); err != nil {
		return err
	}
	return s.ValidateSchema()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.DB = nil
	return err
}

// GetConfigPath returns a fixed label so the connection string never reaches output.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}

func isConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
