package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/kikitorin/internal/config"
)

type envConfig struct {
	Env                    string `env:"ENV" envDefault:"production"`
	ServiceURL             string `env:"SERVICE_URL,required"`
	TokenURL               string `env:"TOKEN_URL"`
	StreamURL              string `env:"STREAM_URL"`
	APIKey                 string `env:"API_KEY,required"`
	RecognitionModel       string `env:"RECOGNITION_MODEL"`
	LearningOptOut         bool   `env:"LEARNING_OPT_OUT" envDefault:"false"`
	ClientName             string `env:"CLIENT_NAME" envDefault:"kikitorin-go/1.0"`
	SampleRateHertz        int    `env:"SAMPLE_RATE_HERTZ" envDefault:"16000"`
	MaxConnectRetries      int    `env:"MAX_CONNECT_RETRIES" envDefault:"2"`
	QueueLimit             int    `env:"QUEUE_LIMIT" envDefault:"512"`
	TokenRefreshTimeoutSec int    `env:"TOKEN_REFRESH_TIMEOUT_SEC" envDefault:"10"`
	DisconnectTimeoutSec   int    `env:"DISCONNECT_TIMEOUT_SEC" envDefault:"5"`
	TranscriptWebhookURL   string `env:"TRANSCRIPT_WEBHOOK_URL"`
	MetricsAddr            string `env:"METRICS_ADDR"`
	AudioFile              string `env:"AUDIO_FILE"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                  raw.Env,
		ServiceURL:           strings.TrimRight(raw.ServiceURL, "/"),
		TokenURL:             raw.TokenURL,
		StreamURL:            raw.StreamURL,
		APIKey:               raw.APIKey,
		RecognitionModel:     raw.RecognitionModel,
		LearningOptOut:       raw.LearningOptOut,
		ClientName:           raw.ClientName,
		SampleRateHertz:      raw.SampleRateHertz,
		MaxConnectRetries:    raw.MaxConnectRetries,
		QueueLimit:           raw.QueueLimit,
		TokenRefreshTimeout:  time.Duration(raw.TokenRefreshTimeoutSec) * time.Second,
		DisconnectTimeout:    time.Duration(raw.DisconnectTimeoutSec) * time.Second,
		TranscriptWebhookURL: raw.TranscriptWebhookURL,
		MetricsAddr:          raw.MetricsAddr,
		AudioFile:            raw.AudioFile,
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = cfg.ServiceURL + "/v1/token"
	}
	if cfg.StreamURL == "" {
		cfg.StreamURL = websocketScheme(cfg.ServiceURL) + "/v1/recognize"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func websocketScheme(serviceURL string) string {
	switch {
	case strings.HasPrefix(serviceURL, "https://"):
		return "wss://" + strings.TrimPrefix(serviceURL, "https://")
	case strings.HasPrefix(serviceURL, "http://"):
		return "ws://" + strings.TrimPrefix(serviceURL, "http://")
	default:
		return serviceURL
	}
}
