package cli

import (
	"fmt"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return fmt.Errorf("migrate only supports SQL storage, %s has no schema", ctx.Store.GetConfigPath())
	}

	before, pending, err := s.SchemaStatus()
	if err != nil {
		return err
	}
	if pending == 0 {
		ctx.printf("No migrations to apply. Database is at version %d.\n", before)
		return nil
	}

	if err := s.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	after, _, err := s.SchemaStatus()
	if err != nil {
		return err
	}
	ctx.printf("Successfully applied %d migration(s), version %d -> %d.\n", pending, before, after)
	return nil
}
