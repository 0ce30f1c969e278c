package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		varName := string(envVarRegex.FindSubmatch(match)[1])
		if value, exists := os.LookupEnv(varName); exists {
			return []byte(value)
		}
		return match
	})
}

// Environment variables recognised on top of the config file.
const (
	EnvModelBlobURL     = "MODEL_BLOB_URL"
	EnvModelDir         = "MODEL_DIR"
	EnvDefaultTopK      = "DEFAULT_TOP_K"
	EnvDefaultThreshold = "DEFAULT_THRESHOLD"
	EnvPort             = "PORT"
	EnvLogLevel         = "LOG_LEVEL"
)

// ApplyEnv overrides config values with the process environment. Unset or
// empty variables leave the config untouched.
func ApplyEnv(cfg *Config) error {
	if v := lookup(EnvModelBlobURL); v != "" {
		cfg.Model.BlobURL = v
	}
	if v := lookup(EnvModelDir); v != "" {
		cfg.Model.Dir = v
	}
	if v := lookup(EnvDefaultTopK); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultTopK, err)
		}
		cfg.Inference.DefaultTopK = n
	}
	if v := lookup(EnvDefaultThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultThreshold, err)
		}
		cfg.Inference.DefaultThreshold = &f
	}
	if v := lookup(EnvPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = n
	}
	if v := lookup(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	return nil
}

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
