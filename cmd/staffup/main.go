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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/staffup/internal/alert"
	"github.com/hamed0406/staffup/internal/config"
	"github.com/hamed0406/staffup/internal/feed"
	"github.com/hamed0406/staffup/internal/geo"
	"github.com/hamed0406/staffup/internal/httpapi"
	"github.com/hamed0406/staffup/internal/logging"
	"github.com/hamed0406/staffup/internal/metrics"
	"github.com/hamed0406/staffup/internal/notify"
	"github.com/hamed0406/staffup/internal/repo/memory"
	"github.com/hamed0406/staffup/internal/scheduler"
)

const readyTimeout = 10 * time.Second

const usage = `Usage: staffup [options]

Watches the VATSIM network and posts to Discord when busy airports have no
covering controller.

Options:
  -h, --help    show this help and exit
  -d, --debug   enable debug logging

Environment:
  STAFFUP_CONFIG   config file path (default config.json)
  STAFFUP_TOKEN    Discord bot token, overrides the config file
  STAFFUP_CHANNEL  Discord channel id, overrides the config file
`

func main() {
	fs := pflag.NewFlagSet("staffup", pflag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }
	help := fs.BoolP("help", "h", false, "show help")
	debug := fs.BoolP("debug", "d", false, "enable debug logging")
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if *help {
		fs.Usage()
		os.Exit(0)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogDir, *debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("staffup_fatal", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	airports, err := geo.NewTable(cfg.Airports)
	if err != nil {
		return err
	}
	rules, err := alert.CompileRules(cfg.Alerts)
	if err != nil {
		return err
	}
	if err := alert.ValidateRules(airports, rules); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := &notify.Mirrored{Primary: notify.NewDiscord(cfg.Token), Logger: logger}
	if k := notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic); k != nil {
		defer k.Close()
		sender.Mirrors = append(sender.Mirrors, k)
		logger.Info("kafka_sink_enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	gw := notify.NewGateway(logger, cfg.Token)
	go func() { _ = gw.Run(ctx) }()
	select {
	case <-gw.Ready():
		logger.Info("gateway_ready")
	case <-time.After(readyTimeout):
		logger.Warn("gateway_ready_timeout", zap.Duration("waited", readyTimeout))
	case <-ctx.Done():
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	alertLog := memory.New(memory.DefaultCapacity)

	ev := alert.NewEvaluator(logger, airports, sender, alert.EvaluatorConfig{
		ChannelID: cfg.Channel,
		Cooldown:  cfg.Cooldown(),
	})
	provider := &feed.RetryProvider{
		Inner:    feed.NewVATSIM(30 * time.Second),
		Attempts: 3,
		Backoff:  2 * time.Second,
	}
	poller := scheduler.NewPoller(logger, provider, ev, rules, scheduler.DefaultInterval)
	poller.Metrics = m
	poller.Log = alertLog

	if cfg.StatusAddr != "" {
		api := httpapi.NewServer(logger, poller, alertLog, reg, cfg.StatusKeys)
		srv := &http.Server{Addr: cfg.StatusAddr, Handler: api.Router(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.StatusAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api_listen_error", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("staffup_stopped")
	return nil
}
