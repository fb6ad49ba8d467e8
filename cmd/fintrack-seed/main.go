// Command fintrack-seed fills the configured store with demo rows for one
// owner and prints a bearer token for that owner.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	owner := flag.String("owner", "demo", "owner id to seed")
	months := flag.Int("months", 6, "months of demo transactions")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed token")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	ctx := context.Background()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	if bcfg.Type == backend.Memory {
		logger.Warn("Seeding the memory backend; rows are lost when this command exits")
	}
	store, err := backend.NewFactory(logger.Slog()).Create(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer store.Close()

	svc := services.NewLedgerService(store.Store, nil, nil, logger.WithComponent(applog.ComponentLedger).Slog())
	stats, err := seedOwner(ctx, svc, *owner, time.Now().UTC(), *months)
	if err != nil {
		cli.Fatal(logger, "Seeding failed", err, "owner", *owner)
	}
	logger.Info("Seed complete",
		"owner", *owner,
		"categories", stats.categories,
		"transactions", stats.transactions,
		"accounts", stats.accounts,
		"assets", stats.assets)

	token, err := auth.IssueToken(*owner, []byte(cfg.JWTSecret), *tokenTTL, time.Now())
	if err != nil {
		cli.Fatal(logger, "Failed to issue token", err)
	}
	fmt.Println(token)
}
