package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gdl90rx/internal/config"
	"gdl90rx/internal/metrics"
	"gdl90rx/internal/replay"
	"gdl90rx/internal/traffic"
	"gdl90rx/internal/web"
)

func main() {
	var configPath string
	var summaryPath string
	var hexMode bool
	flag.StringVar(&configPath, "config", "./gdl90rx.yaml", "Path to YAML config")
	flag.StringVar(&summaryPath, "summary", "", "Print a summary of a capture log and exit")
	flag.BoolVar(&hexMode, "hex", false, "Decode hex-encoded frames from stdin, one chunk per line, and exit")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if summaryPath != "" {
		if err := printLogSummary(os.Stdout, summaryPath); err != nil {
			log.Fatal().Err(err).Str("path", summaryPath).Msg("capture summary failed")
		}
		return
	}
	if hexMode {
		if _, err := runHex(os.Stdin, os.Stdout, log.Logger); err != nil {
			log.Fatal().Err(err).Msg("hex decode failed")
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("config load failed")
	}

	logs := web.NewLogBuffer(500)
	logger := newLogger(cfg.Log, os.Stderr, logs)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, os.Stdin, logger, logs); err != nil {
		logger.Fatal().Err(err).Msg("gdl90rx stopped")
	}
}

// newLogger builds the process logger. Every line is also kept in logs for
// the monitor's /api/logs endpoint.
func newLogger(cfg config.LogConfig, out io.Writer, logs *web.LogBuffer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	console := out
	if !cfg.JSON {
		console = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	w := zerolog.MultiLevelWriter(console, logs)
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg config.Config, stdin io.Reader, logger zerolog.Logger, logs *web.LogBuffer) error {
	src, counters, err := newSource(cfg.Input, stdin, logger)
	if err != nil {
		return err
	}

	store := traffic.NewStore(traffic.StoreConfig{MaxTargets: cfg.Traffic.MaxTargets, TTL: cfg.Traffic.TTL})
	hub := web.NewHub()
	status := web.NewStatus()
	status.SetInput(describeInput(cfg.Input))

	sink := metrics.New(nil, logger)
	if cfg.Influx.Enable {
		sink = metrics.NewInflux(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket, logger)
		logger.Info().Str("url", cfg.Influx.URL).Str("bucket", cfg.Influx.Bucket).Msg("influxdb metrics enabled")
	}

	p := newPipeline(store, hub, status, sink, logger)
	p.counters = counters

	// Input ending (replay done, stdin EOF) shuts the process down.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	chunks := make(chan []byte, 64)
	var sinkW io.Writer = chunkWriter{ctx: gctx, ch: chunks}

	var capture *replay.Writer
	if cfg.Record.Enable {
		capture, err = replay.CreateWriter(cfg.Record.Path)
		if err != nil {
			return fmt.Errorf("record open: %w", err)
		}
		defer capture.Close()
		rec := replay.NewRecorder(capture, sinkW, logger)
		sinkW = rec
		logger.Info().Str("path", cfg.Record.Path).Msg("recording input")

		g.Go(func() error {
			t := time.NewTicker(time.Second)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					if err := rec.Flush(); err != nil {
						logger.Warn().Err(err).Msg("capture flush failed")
					}
				}
			}
		})
	}

	logger.Info().Str("input", describeInput(cfg.Input)).Msg("gdl90rx starting")

	g.Go(func() error {
		defer close(chunks)
		if err := src(gctx, sinkW); err != nil {
			if gctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("input %s: %w", cfg.Input.Type, err)
		}
		logger.Info().Msg("input finished")
		return nil
	})

	g.Go(func() error {
		defer stop()
		return p.run(gctx, chunks)
	})

	if cfg.Monitor.Enable {
		g.Go(func() error {
			return web.Serve(gctx, cfg.Monitor.Listen, web.Deps{
				Status:  status,
				Traffic: store,
				Hub:     hub,
				Logs:    logs,
				Logger:  logger,
			})
		})
	}

	g.Go(func() error {
		return sink.Run(gctx)
	})

	err = g.Wait()
	logger.Info().Msg("gdl90rx stopping")
	return err
}
