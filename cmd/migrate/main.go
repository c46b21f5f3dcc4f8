// Command migrate manages the versioned postgres schema under ~/migrations.
// sqlite databases are installed by the server on first start instead.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/fileprovider"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "~/migrations"

var errUsage = errors.New("invalid arguments")

// env is what a command runs against. migrator is nil for file commands.
type env struct {
	log      *zap.Logger
	creator  *migration.Creator
	migrator *migration.Migrator
}

type command struct {
	usage    string
	summary  string
	minArgs  int
	database bool
	run      func(e *env, args []string) error
}

var commands = map[string]command{
	"up": {usage: "up", summary: "Apply all pending migrations", database: true,
		run: func(e *env, _ []string) error { return e.migrator.Up() }},
	"down": {usage: "down", summary: "Roll back all migrations", database: true,
		run: func(e *env, _ []string) error { return e.migrator.Down() }},
	"step": {usage: "step <n>", summary: "Apply n migrations, negative n rolls back", minArgs: 1, database: true,
		run: func(e *env, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: step count %q", errUsage, args[0])
			}
			return e.migrator.Steps(n)
		}},
	"goto": {usage: "goto <version>", summary: "Migrate up or down to a version", minArgs: 1, database: true,
		run: func(e *env, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: version %q", errUsage, args[0])
			}
			return e.migrator.GoTo(uint(v))
		}},
	"version": {usage: "version", summary: "Show the applied version", database: true,
		run: func(e *env, _ []string) error {
			v, dirty, err := e.migrator.Version()
			if err != nil {
				return err
			}
			e.log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
			return nil
		}},
	"force": {usage: "force <version>", summary: "Set the version without migrating, clears dirty", minArgs: 1, database: true,
		run: func(e *env, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: version %q", errUsage, args[0])
			}
			return e.migrator.Force(v)
		}},
	"drop": {usage: "drop -confirm", summary: "Drop every table in the database", minArgs: 1, database: true,
		run: func(e *env, args []string) error {
			if args[0] != "-confirm" && args[0] != "--confirm" {
				return fmt.Errorf("%w: drop needs -confirm", errUsage)
			}
			return e.migrator.Drop()
		}},
	"create": {usage: "create <name> [description]", summary: "Write a new up/down file pair", minArgs: 1,
		run: func(e *env, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := e.creator.Create(args[0], description)
			if err != nil {
				return err
			}
			e.log.Info("Migration created", zap.String("version", mf.Version),
				zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
			return nil
		}},
	"list": {usage: "list", summary: "List the migration files",
		run: func(e *env, _ []string) error {
			names, err := e.creator.List()
			if err != nil {
				return err
			}
			e.log.Info("Migrations", zap.Int("count", len(names)))
			for _, n := range names {
				fmt.Println("  ", n)
			}
			return nil
		}},
}

func main() {
	path := flag.String("path", defaultMigrationsPath, "migrations directory; ~/ is the content root")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 < cmd.minArgs {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(log, *path, args[0], cmd, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			log.Error("Bad arguments", zap.Error(err))
			usage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(log *zap.Logger, path, name string, cmd command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	e := &env{
		log:     log,
		creator: migration.NewCreator(fileprovider.NewLocalFileProvider(cfg.App.ContentRoot), path),
	}
	log.Debug("Running migration command", zap.String("command", name), zap.String("dir", e.creator.Dir()))

	if !cmd.database {
		return cmd.run(e, args)
	}
	if cfg.Database.Provider != config.ProviderPostgres {
		return fmt.Errorf("versioned migrations need the postgres provider, configured provider is %q", cfg.Database.Provider)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	e.migrator, err = migration.New(db, e.creator.Dir(), migration.WithLogger(log))
	if err != nil {
		return err
	}
	defer e.migrator.Close()

	return cmd.run(e, args)
}

func usage() {
	names := []string{"up", "down", "step", "goto", "version", "force", "drop", "create", "list"}
	fmt.Fprintln(os.Stderr, "Usage: migrate [-path dir] [-log-level level] <command> [args]\n\nCommands:")
	for _, n := range names {
		c := commands[n]
		fmt.Fprintf(os.Stderr, "  %-28s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(os.Stderr, "\nThe database is read from config.toml and SF_DATABASE_* variables.")
}
