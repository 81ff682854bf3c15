package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/config"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/persistence"
)

func main() {
	command := flag.String("cmd", "up", "migration command: up, down or status")
	steps := flag.Int("steps", 1, "number of migrations to revert with -cmd down")
	to := flag.Int("to", 0, "apply migrations up to this version with -cmd up (0 = latest)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if !pg.Enabled() {
		logger.Fatal("POSTGRES_DSN is required for migrations")
	}

	migrator, err := persistence.NewMigrator(pg.PoolHandle(), logger)
	if err != nil {
		logger.Fatal("failed to load migrations", zap.Error(err))
	}

	switch *command {
	case "up":
		target := *to
		if target == 0 {
			target = migrator.Latest()
		}
		err = migrator.UpTo(ctx, target)
	case "down":
		err = migrator.Down(ctx, *steps)
	case "status":
		var statuses []persistence.MigrationStatus
		statuses, err = migrator.Status(ctx)
		for _, s := range statuses {
			applied := "pending"
			if s.AppliedAt != nil {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(os.Stdout, "%04d  %-40s %s\n", s.Version, s.Name, applied)
		}
	default:
		logger.Fatal("unknown command", zap.String("cmd", *command))
	}
	if err != nil {
		logger.Fatal("migration failed", zap.String("cmd", *command), zap.Error(err))
	}
}
