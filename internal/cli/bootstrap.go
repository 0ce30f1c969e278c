package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/artifact"
	"github.com/alexandrapadonou/tagStackoverflow/internal/config"
	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/model"
)

// loadConfig resolves the config file and environment, then applies the
// --host and --port flags when they were given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config, log *slog.Logger) *artifact.Fetcher {
	return artifact.NewFetcher(artifact.FetcherConfig{
		ConnectTimeout: cfg.ConnectTimeout(),
		ReadTimeout:    cfg.FetchReadTimeout(),
		ChunkSize:      cfg.ChunkSize(),
	}, log)
}

// newLoader returns a loader that locates the bundle, fetches it when the
// local directory is unusable, then loads it.
func newLoader(cfg *config.Config, log *slog.Logger) *model.Loader {
	src := artifact.Source{ModelDir: cfg.Model.Dir, BlobURL: cfg.Model.BlobURL}
	fetcher := newFetcher(cfg, log)

	return model.NewLoader(func(ctx context.Context) (string, error) {
		bundle, err := artifact.Ensure(ctx, src, fetcher, log)
		if err != nil {
			return "", err
		}
		return bundle.Dir, nil
	}, log)
}

// loadedBundleBytes reports the size of the bundle loader currently serves.
func loadedBundleBytes(loader *model.Loader) func() int64 {
	return func() int64 {
		if st := loader.Current(); st != nil {
			return st.Metadata().BundleBytes
		}
		return 0
	}
}

func inferenceDefaults(cfg *config.Config) inference.Defaults {
	return inference.Defaults{
		TopK:      cfg.Inference.DefaultTopK,
		Threshold: cfg.Inference.DefaultThreshold,
		MaxTopK:   cfg.Inference.MaxTopK,
	}
}
