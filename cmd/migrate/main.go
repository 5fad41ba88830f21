package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/instance"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/migrate"
	"github.com/joho/godotenv"
)

type flags struct {
	cmd     string
	dir     string
	name    string
	version string
}

// offline commands only touch the migrations directory.
var offline = map[string]func(flags) (string, error){
	"create": func(f flags) (string, error) {
		if f.name == "" {
			return "", errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(f.dir, f.name)
		if err != nil {
			return "", err
		}
		return "created migration: " + path, nil
	},
	"validate": func(f flags) (string, error) {
		if err := migrate.ValidateDir(f.dir); err != nil {
			return "", err
		}
		return "migration validation passed", nil
	},
}

// online commands run goose against the configured database.
var online = map[string]func(context.Context, *sql.DB, flags) error{
	"up":     func(ctx context.Context, conn *sql.DB, f flags) error { return migrate.Run(ctx, conn, f.dir, "up") },
	"down":   func(ctx context.Context, conn *sql.DB, f flags) error { return migrate.Run(ctx, conn, f.dir, "down") },
	"status": func(ctx context.Context, conn *sql.DB, f flags) error { return migrate.Run(ctx, conn, f.dir, "status") },
	"version": func(ctx context.Context, conn *sql.DB, f flags) error {
		if f.version == "" {
			return errors.New("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, conn, f.dir, f.version)
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var f flags
	flag.StringVar(&f.cmd, "cmd", "up", "migration command: "+commandNames())
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&f.name, "name", "", "migration name (for create)")
	flag.StringVar(&f.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "backoffice-migrate",
		Environment: cfg.App.Env,
		Instance:    instance.GetID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": f.cmd, "dir": f.dir})

	if cmd, ok := offline[f.cmd]; ok {
		out, err := cmd(f)
		if err != nil {
			return fmt.Errorf("%s: %w", f.cmd, err)
		}
		fmt.Println(out)
		return nil
	}

	cmd, ok := online[f.cmd]
	if !ok {
		return fmt.Errorf("unknown -cmd value %q (want %s)", f.cmd, commandNames())
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}

	if err := cmd(ctx, sqlDB, f); err != nil {
		logg.Error(ctx, "migration failed", err)
		return fmt.Errorf("goose %s: %w", f.cmd, err)
	}
	logg.Info(ctx, "migration finished")
	return nil
}

func commandNames() string {
	names := make([]string, 0, len(offline)+len(online))
	for name := range offline {
		names = append(names, name)
	}
	for name := range online {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}
