// Command migrate manages the postgres schema of the CRM backend.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	dir      string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply and manage the CRM database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: `Apply and manage the CRM database schema.

Connection settings come from the same CRM_DATABASE_* variables and
config.toml the server reads. Without --dir the migrations compiled into
the binary are used.`,
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		migratorCmd(opts, "up", "Apply every pending migration", cobra.NoArgs,
			func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }),
		migratorCmd(opts, "down", "Roll back every applied migration", cobra.NoArgs,
			func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }),
		migratorCmd(opts, "steps <n>", "Apply n migrations; negative n rolls back", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string, _ *zap.Logger) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		migratorCmd(opts, "goto <version>", "Migrate up or down to a version", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string, _ *zap.Logger) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		migratorCmd(opts, "force <version>", "Mark a version as applied without running it", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string, _ *zap.Logger) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		migratorCmd(opts, "version", "Show the applied version and pending count", cobra.NoArgs,
			func(m *migration.Migrator, _ []string, log *zap.Logger) error {
				s, err := m.Status()
				if err != nil {
					return err
				}
				log.Info("Schema status",
					zap.Uint("version", s.Version),
					zap.Bool("dirty", s.Dirty),
					zap.Uint("latest", s.Latest),
					zap.Int("pending", s.Pending),
				)
				return nil
			}),
		createCmd(opts),
	)
	return root
}

func createCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "create <name> [description]",
		Short:   "Write an empty up/down migration pair",
		Args:    cobra.RangeArgs(1, 2),
		Example: `  migrate create add_invoice_reminders --dir migrations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			dir := opts.dir
			if dir == "" {
				dir = "migrations"
			}
			desc := ""
			if len(args) > 1 {
				desc = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], desc)
			if err != nil {
				return err
			}
			log.Info("Migration created",
				zap.Uint("version", mf.Version),
				zap.String("up", mf.UpPath),
				zap.String("down", mf.DownPath),
			)
			return nil
		},
	}
}

type migratorFunc func(m *migration.Migrator, args []string, log *zap.Logger) error

func migratorCmd(opts *options, use, short string, args cobra.PositionalArgs, run migratorFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			m, closeDB, err := openMigrator(opts, log)
			if err != nil {
				return err
			}
			defer closeDB()
			defer func() {
				if err := m.Close(); err != nil {
					log.Warn("Failed to close migrator", zap.Error(err))
				}
			}()

			if err := run(m, a, log); err != nil {
				log.Error("Migration command failed", zap.String("command", cmd.Name()), zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func openMigrator(opts *options, log *zap.Logger) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return nil, nil, fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}

	if opts.dir != "" {
		m, err := migration.NewFromDir(cfg.Database.DSN(), opts.dir, log)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() { _ = db.Close() }, nil
}

func newLogger(level string) (*zap.Logger, error) {
	return logger.New(logger.Config{Level: level, Format: "console", Output: "stdout"})
}
