package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/portfolio-site/portfolio-api/config"
	"github.com/portfolio-site/portfolio-api/pkg/db"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

const migrationsPath = "file://migrations"

const usage = `usage: migrate [up | down [steps] | version]`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.WorkOffline {
		fmt.Fprintln(os.Stderr, "DB_WORK_OFFLINE is set; nothing to migrate")
		os.Exit(1)
	}

	command, steps, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Server.AppEnv,
		ServiceName: "portfolio-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	database := maskDatabaseURL(cfg.Database.URL)

	migrator, err := db.NewMigrator(db.Options{
		URL:           cfg.Database.URL,
		CACertPath:    cfg.Database.CACertPath,
		TLSServerName: cfg.Database.TLSServer,
	}, migrationsPath)
	if err != nil {
		logger.Fatal("Failed to prepare migrations", zap.String("database", database), zap.Error(err))
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("Failed to close migrator", zap.Error(closeErr))
		}
	}()

	switch command {
	case "version":
		err = reportVersion(migrator, database)
	case "down":
		logger.Info("Rolling back migrations", zap.String("database", database), zap.Int("steps", steps))
		err = migrator.Down(steps)
	default:
		logger.Info("Starting database migrations", zap.String("database", database))
		err = migrator.Up()
	}
	if err != nil {
		logger.Error("Migration command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}

	if command != "version" {
		if err := reportVersion(migrator, database); err != nil {
			logger.Warn("Failed to read migration version", zap.Error(err))
		}
	}
}

// parseArgs returns the command and, for down, the number of steps
func parseArgs(args []string) (string, int, error) {
	if len(args) == 0 {
		return "up", 0, nil
	}

	switch args[0] {
	case "up", "version":
		if len(args) > 1 {
			return "", 0, fmt.Errorf("%s takes no arguments", args[0])
		}
		return args[0], 0, nil
	case "down":
		if len(args) == 1 {
			return "down", 1, nil
		}
		steps, err := strconv.Atoi(args[1])
		if err != nil || steps <= 0 || len(args) > 2 {
			return "", 0, fmt.Errorf("down expects a positive step count")
		}
		return "down", steps, nil
	}
	return "", 0, fmt.Errorf("unknown command %q", args[0])
}

func reportVersion(migrator *db.Migrator, database string) error {
	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("Current migration version",
		zap.String("database", database),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// maskDatabaseURL hides credentials in the database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	u.RawQuery = ""
	return u.String()
}
