package main

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/campustrack-backend/internal/config"
	"github.com/campustrack/campustrack-backend/internal/database"
	"github.com/campustrack/campustrack-backend/internal/logger"
	"github.com/campustrack/campustrack-backend/internal/model"
	"github.com/campustrack/campustrack-backend/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	roomRepo := repository.NewRoomRepository(pool)

	fmt.Println("=== Seeding Room Registry ===")

	// Names as they appear on the campus schedule grid, before normalization.
	names := []string{
		"RM.7", "RM.8", "RM.9", "RM.10", "RM.11",
		"CL1", "CL2", "CL3", "CL4",
		"LAB A", "LAB B", "LAB C",
		"AUD.1", "AUD.2",
		"GYM",
	}

	successCount := 0
	for _, raw := range names {
		name := model.NormalizeRoomName(raw)
		if err := roomRepo.Create(ctx, name); err != nil {
			fmt.Printf("Error creating room %s: %v\n", name, err)
		} else {
			successCount++
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d rooms.\n", successCount, len(names))
}
