package config

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Env                  string
	ServiceURL           string
	TokenURL             string
	StreamURL            string
	APIKey               string
	RecognitionModel     string
	LearningOptOut       bool
	ClientName           string
	SampleRateHertz      int
	MaxConnectRetries    int
	QueueLimit           int
	TokenRefreshTimeout  time.Duration
	DisconnectTimeout    time.Duration
	TranscriptWebhookURL string
	MetricsAddr          string
	AudioFile            string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.SampleRateHertz <= 0 {
		return fmt.Errorf("SAMPLE_RATE_HERTZ must be positive, got %d", c.SampleRateHertz)
	}
	if c.MaxConnectRetries <= 0 {
		return fmt.Errorf("MAX_CONNECT_RETRIES must be positive, got %d", c.MaxConnectRetries)
	}
	if c.QueueLimit <= 0 {
		return fmt.Errorf("QUEUE_LIMIT must be positive, got %d", c.QueueLimit)
	}
	if _, err := url.Parse(c.StreamURL); err != nil {
		return fmt.Errorf("STREAM_URL is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "SERVICE_URL", value: c.ServiceURL},
		{name: "TOKEN_URL", value: c.TokenURL},
		{name: "STREAM_URL", value: c.StreamURL},
		{name: "API_KEY", value: c.APIKey},
		{name: "CLIENT_NAME", value: c.ClientName},
	}
}

// StreamTarget assembles the websocket dial address: the streaming endpoint
// plus the optional recognizer parameters as query values.
func (c *Config) StreamTarget() (string, error) {
	u, err := url.Parse(c.StreamURL)
	if err != nil {
		return "", fmt.Errorf("STREAM_URL is invalid: %w", err)
	}
	q := u.Query()
	if c.RecognitionModel != "" {
		q.Set("model", c.RecognitionModel)
	}
	if c.LearningOptOut {
		q.Set("learning_opt_out", "1")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
