package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	grpclib "google.golang.org/grpc"

	"github.com/simaogato/investfolio-backend/internal/adapter/auth"
	grpcadapter "github.com/simaogato/investfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/investfolio-backend/internal/adapter/httpapi"
	"github.com/simaogato/investfolio-backend/internal/config"
	"github.com/simaogato/investfolio-backend/internal/metrics"
	"github.com/simaogato/investfolio-backend/internal/usecase/dashboard"
	"github.com/simaogato/investfolio-backend/internal/usecase/investment"
	"github.com/simaogato/investfolio-backend/internal/usecase/seeder"
)

const (
	defaultConfigPath = "investfolio.toml"
	shutdownTimeout   = 10 * time.Second
)

type serveCmd struct {
	configPath string
	migrate    bool
	seed       bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the gRPC and HTTP servers" }
func (*serveCmd) Usage() string {
	return `serve [-config <file>] [-migrate] [-seed]

  Starts the PortfolioService gRPC server and the REST API. The in-memory
  store is always seeded with the demo catalog.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", defaultConfigPath, "TOML configuration file (optional)")
	f.BoolVar(&c.migrate, "migrate", true, "apply the schema before serving")
	f.BoolVar(&c.seed, "seed", false, "insert the demo product catalog before serving")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := serve(ctx, cfg, log, c.migrate, c.seed); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger, migrate, seed bool) error {
	// 1. Setup store
	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	if seed || cfg.Store.Driver == config.StoreMemory {
		if _, err := seeder.NewCatalogSeeder(store.Products, log).Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	locker, closeLocker, err := openLocker(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open lock: %w", err)
	}
	defer closeLocker()

	// 2. Initialize services
	m := metrics.NewMetrics()
	investmentService := investment.NewInvestmentService(
		store.Products,
		store.Holdings,
		store.Transactions,
		store.UnitOfWork,
		locker,
		m,
		log,
	)
	investmentService.Currency = cfg.Currency
	dashboardService := dashboard.NewDashboardService(investmentService)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	// 3. gRPC server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log.With().Str("component", "grpc").Logger()),
			grpcadapter.AuthInterceptor(verifier),
		),
	)
	grpcadapter.RegisterPortfolioServiceServer(grpcServer, grpcadapter.NewServer(investmentService, dashboardService))

	grpcAddr := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	// 4. HTTP server
	httpServer := httpapi.New(httpapi.Config{
		Port:       cfg.Server.HTTPPort,
		Log:        log,
		Metrics:    m,
		Verifier:   verifier,
		Investment: investmentService,
		Dashboard:  dashboardService,
		RateLimit:  rate.Limit(cfg.RateLimit.RPS),
		RateBurst:  cfg.RateLimit.Burst,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", grpcAddr).Msg("gRPC server listening")
		return grpcServer.Serve(lis)
	})
	g.Go(httpServer.Start)
	g.Go(func() error {
		return waitForShutdown(gctx, log, grpcServer, httpServer)
	})

	return g.Wait()
}

// waitForShutdown waits for SIGTERM, SIGINT or a failed server and gracefully shuts both servers down
func waitForShutdown(ctx context.Context, log zerolog.Logger, grpcServer *grpclib.Server, httpServer *httpapi.Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")
	case <-ctx.Done():
		log.Warn().Msg("Server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	log.Info().Msg("Servers stopped")
	return err
}

type migrateCmd struct {
	configPath string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply the database schema" }
func (*migrateCmd) Usage() string {
	return `migrate [-config <file>]

  Creates the product, holding and transaction tables for the configured
  postgres or sqlite store. Safe to run repeatedly.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", defaultConfigPath, "TOML configuration file (optional)")
}

func (c *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if cfg.Store.Driver == config.StoreMemory {
		fmt.Fprintln(os.Stderr, "The memory store has no schema")
		return subcommands.ExitUsageError
	}

	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open store")
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		return subcommands.ExitFailure
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("Schema applied")
	return subcommands.ExitSuccess
}

type seedCmd struct {
	configPath string
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "insert the demo product catalog" }
func (*seedCmd) Usage() string {
	return `seed [-config <file>]

  Applies the schema and inserts the demo investment products that are
  missing. Existing products are left untouched.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", defaultConfigPath, "TOML configuration file (optional)")
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open store")
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		return subcommands.ExitFailure
	}

	created, err := seeder.NewCatalogSeeder(store.Products, log).Seed(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Seeding failed")
		return subcommands.ExitFailure
	}
	log.Info().Int("created", created).Msg("Catalog seeded")
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	configPath string
	userID     string
	ttl        time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "print a development bearer token" }
func (*tokenCmd) Usage() string {
	return `token [-config <file>] [-user <uuid>] [-ttl <duration>]

  Signs a token with the configured JWT secret. A random user id is used
  when -user is omitted.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", defaultConfigPath, "TOML configuration file (optional)")
	f.StringVar(&c.userID, "user", "", "user id (UUID) to put in the token subject")
	f.DurationVar(&c.ttl, "ttl", 24*time.Hour, "token lifetime")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	userID := uuid.New()
	if c.userID != "" {
		userID, err = uuid.Parse(c.userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid user id: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	token, err := auth.NewVerifier(cfg.Auth.JWTSecret).Sign(userID, c.ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("user:  %s\ntoken: %s\n", userID, token)
	return subcommands.ExitSuccess
}
