package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/contentflow/internal/config"
	pgInfra "github.com/fastygo/contentflow/internal/infrastructure/postgres"
	"github.com/fastygo/contentflow/repository/sqlite"
)

var errPostgresOnly = errors.New("this command needs STORE_DRIVER=postgres; the sqlite schema is managed automatically")

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Store.Driver == config.StoreDriverSQLite {
				db, err := sqlite.Open(e.cfg.SQLite.Path)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "sqlite schema ready at %s\n", e.cfg.SQLite.Path)
				return sqlite.Close(db)
			}
			return withMigrator(e, func(m *pgInfra.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(e, m)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			return withMigrator(e, func(m *pgInfra.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(e, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	ver := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(e, func(m *pgInfra.Migrator) error {
				return printVersion(e, m)
			})
		},
	}

	cmd.AddCommand(up, down, ver)
	return cmd
}

func withMigrator(e *env, fn func(*pgInfra.Migrator) error) error {
	if e.cfg.Store.Driver != config.StoreDriverPostgres {
		return errPostgresOnly
	}
	m, err := pgInfra.NewMigrator(e.cfg.Database, e.cfg.Migrations, e.logger)
	if err != nil {
		return err
	}
	return errors.Join(fn(m), m.Close())
}

func printVersion(e *env, m *pgInfra.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		fmt.Fprintln(e.out, "no migrations applied")
		return nil
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(e.out, "schema version %d (%s)\n", v, state)
	return nil
}
