package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/job-board/internal/cache"
	"github.com/jonathan/job-board/internal/config"
	"github.com/jonathan/job-board/internal/db"
	"github.com/jonathan/job-board/internal/jobboard"
	"github.com/jonathan/job-board/internal/logging"
	"github.com/jonathan/job-board/internal/scheduler"
	"github.com/jonathan/job-board/internal/server"
	"github.com/jonathan/job-board/internal/server/ratelimit"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort   int
	skipMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job board's public listings and owner profile endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply migrations on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.HTTP.Port = servePort
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if !skipMigrate {
		applied, err := database.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Infow("migrations applied", "versions", applied)
		}
	}

	opts := []jobboard.Option{
		jobboard.WithLimits(jobboard.Limits{
			Home:           cfg.Listings.HomeLimit,
			SimilarDefault: cfg.Listings.SimilarDefaultLimit,
			SimilarMax:     jobboard.DefaultLimits().SimilarMax,
		}),
	}
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		opts = append(opts, jobboard.WithCache(cache.NewListings(rdb, cfg.Redis.ListingTTL, log)))
		log.Infow("listing cache enabled", "ttl", cfg.Redis.ListingTTL)
	}
	svc := jobboard.New(database, log, opts...)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(ratelimit.FromConfig(cfg.RateLimit))
	}

	srv := server.New(server.Config{
		HTTP:     cfg.HTTP,
		JWT:      &cfg.JWT,
		Password: &cfg.Password,
		Board:    svc,
		Users:    database,
		Health:   database,
		Limiter:  limiter,
		Logger:   log,
	})

	var sweeper scheduler.Sweeper
	if limiter != nil {
		sweeper = limiter
	}
	sched := scheduler.New(cfg.Scheduler, svc, sweeper, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sched.Stop(stopCtx)
		return nil
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	return g.Wait()
}
