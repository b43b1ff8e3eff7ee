package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// connString is a connection string reduced to its settings. URL forms go
// through pq.ParseURL so both spellings are inspected the same way.
type connString struct {
	raw    string
	isURL  bool
	params map[string]string
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func parseConnString(raw string) (connString, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return connString{}, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(raw); err != nil {
		return connString{}, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	cs := connString{raw: raw, isURL: isURL(raw)}
	dsn := raw
	if cs.isURL {
		var err error
		if dsn, err = pq.ParseURL(raw); err != nil {
			return connString{}, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
	}
	cs.params = dsnParams(dsn)
	return cs, nil
}

// dsnParams splits a key=value DSN. Keys are lowercased.
func dsnParams(dsn string) map[string]string {
	params := make(map[string]string)
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		params[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(v, "'")
	}
	return params
}

func (c connString) has(key string) bool {
	_, ok := c.params[key]
	return ok
}

// withSearchPath pins unqualified table names to schema unless the caller
// already chose a search_path.
func (c connString) withSearchPath(schema string) string {
	if c.has("search_path") {
		return c.raw
	}
	if !c.isURL {
		return c.raw + " search_path=" + schema
	}
	u, err := url.Parse(c.raw)
	if err != nil {
		return c.raw
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidateConnString accepts URL and key=value connection strings that carry
// no password. Passwords belong in ~/.pgpass or PGPASSWORD.
func ValidateConnString(connStr string) error {
	cs, err := parseConnString(connStr)
	if err != nil {
		return err
	}
	if cs.has("password") {
		return ErrEmbeddedCredentials
	}
	if cs.isURL && !cs.has("host") && !cs.has("user") && !cs.has("dbname") {
		return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	return nil
}
