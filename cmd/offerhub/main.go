// Command offerhub runs the product availability aggregation service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/skillsenselab/offerhub/internal/cache"
	"github.com/skillsenselab/offerhub/internal/config"
	"github.com/skillsenselab/offerhub/internal/httpapi"
	"github.com/skillsenselab/offerhub/internal/logging"
	"github.com/skillsenselab/offerhub/internal/metrics"
	"github.com/skillsenselab/offerhub/internal/models"
	"github.com/skillsenselab/offerhub/internal/observability"
	"github.com/skillsenselab/offerhub/internal/offers"
	"github.com/skillsenselab/offerhub/internal/prewarm"
	"github.com/skillsenselab/offerhub/internal/resilience"
	"github.com/skillsenselab/offerhub/internal/vendors"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "offerhub: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, cfg.Name)
	log.Info("starting", map[string]interface{}{
		"version":     cfg.Version,
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Init(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warn("telemetry shutdown", map[string]interface{}{"error": err.Error()})
		}
	}()

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer rdb.Close()

	store := cache.NewStore(rdb, cfg.Cache.TTL, log)
	if err := store.Ping(ctx); err != nil {
		// The cache is soft state; the service degrades to vendor-only.
		log.Warn("redis unreachable at startup", map[string]interface{}{
			"addr": cfg.Redis.Addr, "error": err.Error(),
		})
	}

	adapters := []vendors.Adapter{
		vendors.NewVendorOne(cfg.Vendors.One.BaseURL, cfg.Vendors.Timeout),
		vendors.NewVendorTwo(cfg.Vendors.Two.BaseURL, cfg.Vendors.Timeout),
		vendors.NewVendorThree(cfg.Vendors.Three.BaseURL, cfg.Vendors.Timeout),
	}

	breakers := resilience.NewBreakerSet(models.VendorPriority, cfg.Breaker.FailureThreshold, cfg.Breaker.Cooldown,
		func(name string, from, to resilience.BreakerState) {
			m.RecordBreakerTransition(context.Background(), name, from.String(), to.String())
			log.Info("breaker state change", map[string]interface{}{
				"vendor": name, "from": from.String(), "to": to.String(),
			})
		})

	svc := offers.NewService(offers.Config{
		Timeout:       cfg.Vendors.Timeout,
		RetryAttempts: cfg.Vendors.RetryAttempts,
		RetryDelay:    cfg.Vendors.RetryDelay,
		Freshness:     cfg.Freshness,
	}, adapters, breakers, store, m, log)

	limiter := resilience.NewWindowLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	defer limiter.Close()

	srv := httpapi.New(cfg, svc, limiter, m, log)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	var warmer *prewarm.Job
	if cfg.Prewarm.Enabled {
		warmer = prewarm.NewJob(svc, cfg.Prewarm.SKUs, cfg.Prewarm.Interval, log)
		warmer.Start()
	}

	<-ctx.Done()
	log.Info("shutdown signal received", nil)

	if warmer != nil {
		warmer.Stop()
	}
	if err := srv.Stop(context.Background(), cfg.Server.ShutdownTimeout); err != nil {
		return err
	}

	log.Info("stopped", nil)
	return nil
}
