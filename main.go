package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/config"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/internal/metrics"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/logger"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/processor"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/reader/deltaex"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/writer"
)

// One invocation is one poll: the external scheduler decides cadence. Exit 0
// means rows were appended (or there was cleanly nothing to do); any other
// exit means no rows reached the store this tick.
func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": config.AppEnvironment(),
	}).Info("starting options snapshot poll")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The poll has a hard deadline: feed fetch, prior read and append all
	// have to fit, otherwise the tick is abandoned and the next one starts
	// clean.
	ctx, cancelTimeout := context.WithTimeout(ctx, 4*cfg.Feed.Timeout)
	defer cancelTimeout()

	feed := deltaex.NewClient(cfg)

	var store processor.SnapshotStore
	if cfg.Storage.S3.Enabled {
		s3Store, err := writer.NewS3Store(cfg)
		if err != nil {
			log.WithError(err).Error("failed to initialize s3 store")
			os.Exit(1)
		}
		store = s3Store
	} else {
		log.Warn("s3 storage disabled, running against in-memory store (rows are not persisted)")
		store = writer.NewMemoryStore()
	}

	var publisher *metrics.Publisher
	if cfg.Metrics.Enabled {
		publisher = metrics.NewPublisher(ctx, cfg.Metrics.Region, cfg.Metrics.Namespace)
	}

	pipeline := processor.NewPipeline(cfg, feed, store)
	result, err := pipeline.Run(ctx)

	publisher.PublishPoll(context.WithoutCancel(ctx), map[string]float64{
		"TickersFetched":   float64(result.TickersFetched),
		"MalformedQuotes":  float64(result.Malformed),
		"RowsAppended":     float64(result.RowsAppended),
		"NewContracts":     float64(result.NewContracts),
		"PollDurationMs":   float64(result.Duration.Milliseconds()),
		"PollFailed":       boolToFloat(err != nil && !errors.Is(err, processor.ErrEmptyExpirySet)),
		"EmptyExpiryPolls": boolToFloat(errors.Is(err, processor.ErrEmptyExpirySet)),
	})

	switch {
	case errors.Is(err, processor.ErrEmptyExpirySet):
		log.Info("no active expiry dates, nothing to do")
	case err != nil:
		log.WithError(err).Error("poll failed, no rows appended")
		os.Exit(1)
	default:
		log.WithFields(logger.Fields{
			"rows":        result.RowsAppended,
			"duration_ms": result.Duration.Milliseconds(),
		}).Info("poll completed")
	}

}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
