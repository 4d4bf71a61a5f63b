package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appbilling "github.com/ledgerline/backend/internal/application/billing"
	appfinance "github.com/ledgerline/backend/internal/application/finance"
	appinventory "github.com/ledgerline/backend/internal/application/inventory"
	appinvoicing "github.com/ledgerline/backend/internal/application/invoicing"
	"github.com/ledgerline/backend/internal/infrastructure/cache"
	"github.com/ledgerline/backend/internal/infrastructure/config"
	"github.com/ledgerline/backend/internal/infrastructure/event"
	"github.com/ledgerline/backend/internal/infrastructure/logger"
	"github.com/ledgerline/backend/internal/infrastructure/persistence"
	"github.com/ledgerline/backend/internal/infrastructure/scheduler"
)

func main() {
	root := &cobra.Command{
		Use:   "billingd",
		Short: "Recurring billing daemon for the ledgerline core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	counterRepo := persistence.NewGormDocumentCounterRepository(db.DB)
	templateRepo := persistence.NewGormRecurringTemplateRepository(db.DB)
	generationRepo := persistence.NewGormGenerationRecordRepository(db.DB)

	// Transaction scopes
	invoicingScope := persistence.NewGormTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryScope(db.DB)

	// Report cache. With the redis backend this process shares the cache
	// with report-serving processes, so invoices generated here invalidate
	// their cached statements.
	reportCache, cleanup, err := newReportCache(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// Event bus with cache invalidation
	bus := event.NewInMemoryEventBus(log.Named("events"))
	bus.Subscribe(cache.NewReportInvalidationHandler(reportCache, log.Named("cache")))

	// Application services
	adjuster := appinventory.NewStockAdjuster(inventoryScope, log.Named("inventory"))
	numbers := appinvoicing.NewNumberService(counterRepo, log.Named("numbers"))
	invoices := appinvoicing.NewInvoiceService(invoicingScope, invoiceRepo, numbers, adjuster, log.Named("invoicing"))
	invoices.SetEventPublisher(bus)
	recurring := appbilling.NewRecurringService(invoicingScope, templateRepo, generationRepo, invoices, log.Named("billing"))
	recurring.SetEventPublisher(bus)

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled, nothing to run")
		return nil
	}

	billingScheduler := scheduler.NewRecurringBillingScheduler(recurring, templateRepo, cfg.Scheduler, log.Named("scheduler"))
	billingScheduler.Start(ctx)

	<-ctx.Done()
	billingScheduler.Stop()
	return nil
}

// newReportCache builds the configured report cache backend. The returned
// cleanup closes the Redis client when one was opened.
func newReportCache(cfg *config.Config, log *zap.Logger) (appfinance.ReportCache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewInMemoryReportCache(cfg.Cache.ReportTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return cache.NewRedisReportCache(client, cfg.Cache.ReportTTL, log.Named("cache")),
		func() { client.Close() }, nil
}
