package config

import "time"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Inference InferenceConfig `yaml:"inference"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host            string          `yaml:"host"`
	Port            int             `yaml:"port"`
	PIDFile         string          `yaml:"pid_file"`
	ReadTimeoutSec  int             `yaml:"read_timeout_sec"`
	WriteTimeoutSec int             `yaml:"write_timeout_sec"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds the token bucket settings for /predict.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// PerIP keeps one bucket per client address instead of a shared one.
	PerIP bool `yaml:"per_ip"`
}

// ModelConfig describes where the artifact bundle comes from.
type ModelConfig struct {
	// Dir is the local artifact directory. It is used as-is when it already
	// holds a complete bundle, and is the publish target of a remote fetch.
	Dir string `yaml:"dir"`

	// BlobURL is the remote zip archive of the bundle. Optional.
	BlobURL string `yaml:"blob_url"`

	// Eager loads the bundle before the server starts listening. When false
	// the server starts degraded and loads in the background.
	Eager bool `yaml:"eager"`

	ConnectTimeoutSec int `yaml:"connect_timeout_sec"`
	ReadTimeoutSec    int `yaml:"read_timeout_sec"`
	ChunkSizeKB       int `yaml:"chunk_size_kb"`
}

// InferenceConfig holds operator-level tag selection defaults. Zero values
// mean "use what the bundle's config.json says"; a zero MaxTopK lets a
// request ask for every label of the loaded bundle.
type InferenceConfig struct {
	DefaultTopK      int      `yaml:"default_top_k"`
	DefaultThreshold *float64 `yaml:"default_threshold"`
	MaxTopK          int      `yaml:"max_top_k"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSec) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSec) * time.Second
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Model.ConnectTimeoutSec) * time.Second
}

func (c *Config) FetchReadTimeout() time.Duration {
	return time.Duration(c.Model.ReadTimeoutSec) * time.Second
}

func (c *Config) ChunkSize() int {
	return c.Model.ChunkSizeKB * 1024
}
