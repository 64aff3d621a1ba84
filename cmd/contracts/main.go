package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/diewo77/go-contracts/internal/config"
	"github.com/diewo77/go-contracts/internal/db"
	"github.com/diewo77/go-contracts/internal/logging"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed offers and phone numbers and exit")
	poolSizeFlag    = flag.Int("pool-size", 100, "Phone numbers to stock when seeding")
	seedFlag        = flag.Uint64("seed", 1, "Random seed for the phone number pool")
	renderFlag      = flag.String("render", "", "Generate and store the document of one contract number")
	outFlag         = flag.String("out", "", "With -render, write the document to this file instead of the store")
	photoFlag       = flag.String("photo", "", "With -render, attach this customer photo to the draft first")
	renderAllFlag   = flag.Bool("render-all", false, "Generate documents for every signed contract missing one")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("contracts failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	dbConn, err := db.Connect(cfg.Database, cfg.App.Dev && cfg.Log.Level == "debug")
	if err != nil {
		return err
	}

	if *migrateOnlyFlag || cfg.App.Migrations {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		slog.Info("migrations completed")
		if *migrateOnlyFlag {
			return nil
		}
	}

	if *seedOnlyFlag {
		res, err := db.Seed(dbConn, *poolSizeFlag, *seedFlag)
		if err != nil {
			return err
		}
		slog.Info("seeding completed", "offers", res.Offers, "phone_numbers", res.PhoneNumbers)
		return nil
	}

	app, err := NewApp(ctx, cfg, dbConn)
	if err != nil {
		return err
	}

	if *photoFlag != "" {
		if *renderFlag == "" {
			return fmt.Errorf("-photo needs -render NUMBER")
		}
		if err := app.AttachPhoto(ctx, *renderFlag, *photoFlag); err != nil {
			return err
		}
	}

	switch {
	case *renderFlag != "" && *outFlag != "":
		return app.RenderToFile(ctx, *renderFlag, *outFlag)
	case *renderFlag != "":
		return app.Generate(ctx, *renderFlag)
	case *renderAllFlag:
		return app.GenerateAll(ctx)
	default:
		return app.Summary(ctx)
	}
}
