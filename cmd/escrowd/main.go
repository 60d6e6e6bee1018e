package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/auth"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/engine"
	clickhouseRepo "github.com/raisevaultlabs/raisevault-backend/internal/escrow/repository/clickhouse"
	leveldbRepo "github.com/raisevaultlabs/raisevault-backend/internal/escrow/repository/leveldb"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/service/journal"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/service/reconciler"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/token"
	"github.com/raisevaultlabs/raisevault-backend/internal/metrics"
	"github.com/raisevaultlabs/raisevault-backend/internal/transport"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type config struct {
	Addr          string `long:"addr" env:"ESCROWD_ADDR" description:"HTTP listen address" default:":8000"`
	DataDir       string `long:"data-dir" env:"ESCROWD_DATA_DIR" description:"LevelDB data directory" default:"./data"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"ESCROWD_CLICKHOUSE_DSN" description:"ClickHouse DSN for the event journal" required:"true"`
	Operator      string `long:"operator" env:"ESCROWD_OPERATOR" description:"bootstrap operator account" required:"true"`

	CustodyURL   string        `long:"custody-url" env:"ESCROWD_CUSTODY_URL" description:"token custody service base URL" required:"true"`
	ValueAsset   string        `long:"value-asset" env:"ESCROWD_VALUE_ASSET" description:"asset contributed by depositors" required:"true"`
	ClaimAsset   string        `long:"claim-asset" env:"ESCROWD_CLAIM_ASSET" description:"asset paid out to successful claimants" required:"true"`
	VaultAccount string        `long:"vault-account" env:"ESCROWD_VAULT_ACCOUNT" description:"escrow vault account at the custody service" required:"true"`
	HTTPTimeout  time.Duration `long:"http-timeout" env:"ESCROWD_HTTP_TIMEOUT" description:"HTTP timeout for custody requests" default:"30s"`

	JournalFlushSize     int           `long:"journal-flush-size" env:"ESCROWD_JOURNAL_FLUSH_SIZE" description:"journal batch size" default:"100"`
	JournalFlushInterval time.Duration `long:"journal-flush-interval" env:"ESCROWD_JOURNAL_FLUSH_INTERVAL" description:"journal flush interval" default:"1s"`
	JournalRPS           int           `long:"journal-rps" env:"ESCROWD_JOURNAL_RPS" description:"journal flushes per second, 0 for unlimited" default:"0"`

	ReconcileInterval time.Duration `long:"reconcile-interval" env:"ESCROWD_RECONCILE_INTERVAL" description:"reconciliation interval" default:"1m"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("escrowd failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	store, err := leveldbRepo.NewRepository(cfg.DataDir, metrics.NewStateRepository())
	if err != nil {
		return fmt.Errorf("init state store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("close state store", zap.Error(closeErr))
		}
	}()

	journalRepo, err := clickhouseRepo.NewRepository(cfg.ClickhouseDSN, metrics.NewJournalRepository())
	if err != nil {
		return fmt.Errorf("init journal repository: %w", err)
	}
	defer func() {
		if closeErr := journalRepo.Close(); closeErr != nil {
			logger.Error("close journal repository", zap.Error(closeErr))
		}
	}()

	registry, err := auth.NewRegistry(store, cfg.Operator)
	if err != nil {
		return fmt.Errorf("init operator registry: %w", err)
	}

	valueVault, err := token.NewClient(cfg.CustodyURL, cfg.ValueAsset, cfg.VaultAccount, cfg.HTTPTimeout, metrics.NewTokenClient(cfg.ValueAsset))
	if err != nil {
		return fmt.Errorf("init value vault client: %w", err)
	}
	claimVault, err := token.NewClient(cfg.CustodyURL, cfg.ClaimAsset, cfg.VaultAccount, cfg.HTTPTimeout, metrics.NewTokenClient(cfg.ClaimAsset))
	if err != nil {
		return fmt.Errorf("init claim vault client: %w", err)
	}

	writer := journal.NewWriter(logger, journalRepo, cfg.JournalFlushSize, cfg.JournalFlushInterval, cfg.JournalRPS)
	writer.Start(ctx)
	defer writer.Stop()

	eng, err := engine.New(logger, store, registry, valueVault, claimVault, writer, metrics.NewEngine())
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	recon, err := reconciler.NewService(logger, metrics.NewReconciler(), eng, valueVault, claimVault, journalRepo, cfg.ReconcileInterval)
	if err != nil {
		return fmt.Errorf("init reconciler: %w", err)
	}
	go func() {
		if runErr := recon.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("reconciler stopped", zap.Error(runErr))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/", transport.NewHandler(logger, eng, journalRepo).Router())
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("failed to shutdown http server", zap.Error(shutdownErr))
		}
	}()

	logger.Info("starting http server", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
