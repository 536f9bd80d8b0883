package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/kikitorin/external/config"
	metricsimpl "github.com/foxseedlab/kikitorin/external/metrics"
	tokenimpl "github.com/foxseedlab/kikitorin/external/token"
	transportimpl "github.com/foxseedlab/kikitorin/external/transport"
	webhookimpl "github.com/foxseedlab/kikitorin/external/webhook"
	"github.com/foxseedlab/kikitorin/internal/config"
	"github.com/foxseedlab/kikitorin/internal/protocol"
	"github.com/foxseedlab/kikitorin/internal/session"
	"github.com/foxseedlab/kikitorin/internal/transcript"
	"github.com/foxseedlab/kikitorin/internal/webhook"
	"github.com/samber/do/v2"
)

const (
	frameInterval = 20 * time.Millisecond
	// 残りの認識結果がストリームから届くまでの猶予
	resultSettleDelay = 3 * time.Second
	webhookTimeout    = 15 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	if cfg.MetricsAddr != "" {
		go func() {
			slog.Info("startup: serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsimpl.ListenAndServe(cfg.MetricsAddr); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	run(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	tokenimpl.RegisterDI(injector)
	transportimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	metricsimpl.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func run(cfg *config.Config, injector do.Injector) {
	newSession, err := do.Invoke[session.Factory](injector)
	if err != nil {
		slog.Error("failed to resolve session factory", "error", err)
		os.Exit(1)
	}
	sender, err := do.Invoke[webhook.Sender](injector)
	if err != nil {
		slog.Error("failed to resolve webhook sender", "error", err)
		os.Exit(1)
	}

	fatal := make(chan error, 1)
	s := newSession(session.Callbacks{
		OnResults: func(results []protocol.Result) {
			slog.Debug("results updated", "segments", len(results))
		},
		OnFailure: func(err error) {
			if errors.Is(err, session.ErrCheckCredentials) || errors.Is(err, session.ErrTokenAcquisition) {
				select {
				case fatal <- err:
				default:
				}
			}
		},
	})

	startedAt := time.Now()
	s.Connect()
	s.Start(protocol.Settings{
		Model:           cfg.RecognitionModel,
		LearningOptOut:  cfg.LearningOptOut,
		SampleRateHertz: cfg.SampleRateHertz,
		InterimResults:  true,
	})

	streamed := make(chan struct{})
	go func() {
		defer close(streamed)
		if err := streamAudio(cfg, s); err != nil {
			slog.Error("audio streaming failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
		s.Stop()
		time.Sleep(time.Second)
	case <-streamed:
		time.Sleep(resultSettleDelay)
	case err := <-fatal:
		slog.Error("session failed", "error", err)
		s.Disconnect()
		os.Exit(1)
	}

	s.Disconnect()
	endedAt := time.Now()
	results := s.Results()

	if _, err := os.Stdout.Write(append(transcript.Render(s.ID(), startedAt, endedAt, results), '\n')); err != nil {
		slog.Error("failed to write transcript", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()
	payload := transcript.BuildWebhookPayload(s.ID(), cfg.RecognitionModel, startedAt, endedAt, results)
	if err := sender.SendTranscript(ctx, payload); err != nil {
		slog.Error("transcript webhook delivery failed", "error", err)
	}
}

// streamAudio paces raw PCM from the configured file (or stdin) onto the
// session in real time and queues the stop sentinel at EOF.
func streamAudio(cfg *config.Config, s *session.Session) error {
	var in io.Reader = os.Stdin
	if cfg.AudioFile != "" {
		f, err := os.Open(cfg.AudioFile)
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		in = f
	}

	// 16bit PCM なので 1 サンプル 2 バイト
	frameBytes := cfg.SampleRateHertz * 2 * int(frameInterval/time.Millisecond) / 1000
	frame := make([]byte, frameBytes)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for range ticker.C {
		n, err := io.ReadFull(in, frame)
		if n > 0 {
			s.SendAudio(frame[:n])
		}
		if err != nil {
			s.Stop()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
	}
	return nil
}
