package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ticketplan/internal/maps"
	"ticketplan/internal/shared/config"
	"ticketplan/internal/shared/database"
	"ticketplan/internal/tickets"
	"ticketplan/pkg/cache"

	"github.com/joho/godotenv"
)

type Seeder struct {
	db     *database.DB
	source maps.Loader
}

func main() {
	clean := flag.Bool("clean", false, "truncate tickets and seat maps before seeding")
	overwrite := flag.Bool("overwrite", false, "replace maps that already exist")
	source := flag.String("source", "mock", `where maps come from: "mock" or a ticket API base URL`)
	seed := flag.Int64("rand-seed", 0, "random seed for generated maps, 0 picks one")
	flag.Parse()

	fmt.Println("🌱 Starting ticketplan seat map seeder...")

	_ = godotenv.Load()
	cfg := config.Load()
	// The seeder always needs Postgres.
	cfg.Database.Enabled = true

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, source: newSource(cfg, *source, *seed)}

	if *clean {
		fmt.Println("\n🧹 Cleaning database...")
		if err := seeder.CleanDatabase(); err != nil {
			log.Fatalf("Failed to clean database: %v", err)
		}
		fmt.Println("✅ Database cleaned successfully")
	}

	fmt.Println("\n🌱 Seeding seat maps...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := seeder.SeedAll(ctx, *overwrite)
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Printf("✅ %d seat maps written\n", n)

	fmt.Println("\n🎉 Seeding completed!")
}

func newSource(cfg *config.Config, source string, seed int64) maps.Loader {
	if source == "mock" {
		mockCfg := maps.MockConfig{
			ReservedRatio: cfg.Maps.MockReservedRatio,
			SuccessRatio:  cfg.Maps.MockSuccessRatio,
			Seed:          seed,
		}
		return maps.NewMockLoader(mockCfg)
	}
	return maps.NewClient(maps.ClientConfig{
		BaseURL: source,
		Timeout: cfg.Maps.RequestTimeout,
	}, cache.NewMemoryService(), nil)
}

// CleanDatabase truncates tickets before the maps they reference
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"seat_maps",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll copies every source map into Postgres
func (s *Seeder) SeedAll(ctx context.Context, overwrite bool) (int, error) {
	svc := tickets.NewService(tickets.NewRepository(s.db.PostgreSQL), nil, nil, nil)
	return svc.SeedMaps(ctx, s.source, overwrite)
}
