package config

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			PIDFile:         "",
			ReadTimeoutSec:  10,
			WriteTimeoutSec: 10,
			MaxBodyBytes:    1 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 50,
				Burst:             100,
				PerIP:             false,
			},
		},
		Model: ModelConfig{
			Dir:               "models",
			BlobURL:           "",
			Eager:             true,
			ConnectTimeoutSec: 10,
			ReadTimeoutSec:    60,
			ChunkSizeKB:       1024,
		},
		Inference: InferenceConfig{
			DefaultTopK:      0,
			DefaultThreshold: nil,
			MaxTopK:          0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
