package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nba-props/internal/models"
	"github.com/stitts-dev/nba-props/internal/repository"
	"github.com/stitts-dev/nba-props/pkg/config"
	"github.com/stitts-dev/nba-props/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("Usage: migrate [up|down]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command := os.Args[1]; command {
	case "up":
		if err := repository.NewProjectionRepository(db.DB).Migrate(); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	default:
		logrus.Fatalf("Unknown command: %s", command)
	}
}

// dropTables removes results before passes
func dropTables(db *database.DB) error {
	for _, model := range []interface{}{&models.ProjectionResult{}, &models.ProjectionPass{}} {
		if err := db.Migrator().DropTable(model); err != nil {
			return fmt.Errorf("failed to drop %T: %w", model, err)
		}
	}
	return nil
}
