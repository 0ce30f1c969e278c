package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Model.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("model: %w", err))
	}

	if err := c.Inference.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("inference: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeoutSec < 1 || s.WriteTimeoutSec < 1 {
		errs = append(errs, fmt.Errorf("read_timeout_sec and write_timeout_sec must be at least 1"))
	}
	if s.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be non-negative"))
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}

	return errors.Join(errs...)
}

func (m *ModelConfig) Validate() error {
	var errs []error

	if m.Dir == "" {
		errs = append(errs, fmt.Errorf("dir cannot be empty"))
	}
	if m.BlobURL != "" {
		u, err := url.Parse(m.BlobURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("blob_url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("blob_url must be http or https, got %q", u.Scheme))
		}
	}
	if m.ConnectTimeoutSec < 1 {
		errs = append(errs, fmt.Errorf("connect_timeout_sec must be at least 1"))
	}
	if m.ReadTimeoutSec < 1 {
		errs = append(errs, fmt.Errorf("read_timeout_sec must be at least 1"))
	}
	if m.ChunkSizeKB < 4 {
		errs = append(errs, fmt.Errorf("chunk_size_kb must be at least 4, got %d", m.ChunkSizeKB))
	}

	return errors.Join(errs...)
}

func (i *InferenceConfig) Validate() error {
	var errs []error

	if i.MaxTopK < 0 {
		errs = append(errs, fmt.Errorf("max_top_k must not be negative, got %d", i.MaxTopK))
	}
	switch {
	case i.DefaultTopK < 0:
		errs = append(errs, fmt.Errorf("default_top_k must not be negative, got %d", i.DefaultTopK))
	case i.MaxTopK > 0 && i.DefaultTopK > i.MaxTopK:
		errs = append(errs, fmt.Errorf("default_top_k must be between 0 and max_top_k (%d), got %d", i.MaxTopK, i.DefaultTopK))
	}
	if t := i.DefaultThreshold; t != nil {
		if math.IsNaN(*t) || *t < 0 || *t > 1 {
			errs = append(errs, fmt.Errorf("default_threshold must be between 0 and 1, got %v", *t))
		}
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}
