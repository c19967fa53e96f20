package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/maskwallet/walletd/internal/app"
	"github.com/maskwallet/walletd/internal/config"
	"github.com/maskwallet/walletd/internal/core/application/smartpay"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/maskwallet/walletd/internal/infrastructure/metrics"
	"github.com/maskwallet/walletd/pkg/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var walletMetrics ports.Metrics
	metricsAddr := config.GetString(config.MetricsAddrKey)
	if metricsAddr != "" {
		m, err := metrics.NewPrometheusMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			log.WithError(err).Fatal("failed to register metrics")
		}
		walletMetrics = m
	}

	datadir := config.GetDatadir()
	a, err := app.New(app.Config{
		DBType:               config.GetString(config.DBTypeKey),
		DBDir:                filepath.Join(datadir, config.DbLocation),
		LightScrypt:          config.GetBool(config.LightScryptKey),
		MaxDeriveCount:       config.GetInt(config.MaxDeriveCountKey),
		Metrics:              walletMetrics,
		FunderURL:            config.GetString(config.FunderURLKey),
		OwnerURL:             config.GetString(config.OwnerURLKey),
		BundlerURL:           config.GetString(config.BundlerURLKey),
		ChainRPCURLs:         config.GetChainRPCURLs(),
		SupportedChainIDs:    config.GetSupportedChainIDs(),
		PersonaAddresses:     config.GetPersonaAddresses(),
		ReconcileMinInterval: config.GetDuration(config.ReconcileMinIntervalKey),
		HTTPTimeout:          config.GetDuration(config.HTTPTimeoutKey),
		HTTPCacheTTL:         config.GetDuration(config.HTTPCacheTTLKey),
		HTTPRateLimit:        config.GetInt(config.HTTPRateLimitKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize wallet")
	}
	defer a.Close()

	if pwdFile := config.GetString(config.UnlockPasswordFileKey); pwdFile != "" {
		if err := a.UnlockFromFile(ctx, pwdFile); err != nil {
			log.WithError(err).Fatal("failed to unlock wallet")
		}
		log.Info("wallet unlocked")
	}

	if a.Reconciler != nil {
		if err := a.Reconciler.Start(ctx); err != nil {
			log.WithError(err).Fatal("failed to start smart pay reconciler")
		}
		go refreshAccounts(
			ctx, a.Reconciler, config.GetDuration(config.ReconcileIntervalKey),
		)
	}

	var metricsServer *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		log.Infof("metrics exposed on %s/metrics", metricsAddr)
	}

	profilerEnabled := config.GetBool(config.EnableProfilerKey)
	if profilerEnabled {
		stats.EnableMemoryStatistics(ctx, config.GetDuration(config.StatsIntervalKey))
	}

	log.Info("wallet daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down wallet daemon")
	cancel()

	if metricsServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(
			context.Background(), 5*time.Second,
		)
		defer cancelShutdown()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("failed to stop metrics server")
		}
	}
	if profilerEnabled {
		statsPath := filepath.Join(datadir, config.ProfilerLocation, "metrics")
		if err := stats.DumpMetrics(prometheus.DefaultGatherer, statsPath); err != nil {
			log.WithError(err).Warn("failed to dump metrics")
		}
	}

	log.Debug("exiting")
}

// refreshAccounts periodically schedules an update of the account list.
func refreshAccounts(
	ctx context.Context, reconciler *smartpay.Reconciler, interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reconciler.Trigger()
		}
	}
}
