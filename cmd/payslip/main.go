package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"payslip/internal/amqp"
	"payslip/internal/backend"
	"payslip/internal/cache"
	"payslip/internal/cli"
	"payslip/internal/config"
	apphttp "payslip/internal/http"
	"payslip/internal/log"
	"payslip/internal/metrics"
	"payslip/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid catalog backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize catalog backend", log.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Failed to close catalog backend", log.FieldError, err)
		}
	}()

	m := metrics.New()
	svcOpts := []services.Option{
		services.WithMetrics(m),
		services.WithLogger(logger),
	}

	// Export queue is optional; without it the editor still previews and
	// downloads slips.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		svcOpts = append(svcOpts, services.WithPublisher(amqpClient))
		logger.Info("Export queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Export queue disabled - no AMQP_URL provided")
	}

	slips := services.NewSlipService(services.Config{
		TTL:      cfg.DraftTTL,
		Capacity: cfg.DraftCapacity,
		Company:  cfg.CompanyName,
	}, result.Catalog, svcOpts...)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register("drafts", slips.Drafts())
	if result.Cache != nil {
		caches.Register("catalog", result.Cache)
	}
	caches.StartCleanup(time.Minute)

	srvOpts := []apphttp.Option{
		apphttp.WithMetrics(m),
		apphttp.WithLogger(logger),
	}
	if result.Ping != nil {
		srvOpts = append(srvOpts, apphttp.WithReadiness(apphttp.ReadyFunc(result.Ping)))
	}
	srv := apphttp.NewServer(":"+cfg.Port, slips, srvOpts...)
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting payslip server",
		"port", cfg.Port,
		"backend", backendCfg.Type,
		"draft_ttl", cfg.DraftTTL,
		"draft_capacity", cfg.DraftCapacity)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
