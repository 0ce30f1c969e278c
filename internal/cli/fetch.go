package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/artifact"
	"github.com/alexandrapadonou/tagStackoverflow/internal/logger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the model bundle into the model directory",
	Long: `Download the zipped bundle from the blob URL, validate it and publish it as
the model directory. An existing bundle is only replaced once the new one is
complete and valid. Unlike serve, fetch always downloads.`,
	RunE: runFetch,
}

var (
	fetchURL string
	fetchDir string
)

func init() {
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "bundle archive URL (overrides model.blob_url)")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "destination directory (overrides model.dir)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if fetchURL != "" {
		cfg.Model.BlobURL = fetchURL
	}
	if fetchDir != "" {
		cfg.Model.Dir = fetchDir
	}
	if cfg.Model.BlobURL == "" {
		return &artifact.ConfigurationError{Reason: "no blob URL configured (set MODEL_BLOB_URL, model.blob_url or --url)"}
	}

	log := logger.New(cfg.Logging.Level, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bundle, err := newFetcher(cfg, log).Fetch(ctx, cfg.Model.BlobURL, cfg.Model.Dir)
	if err != nil {
		return err
	}

	if jsonOut {
		fmt.Printf(`{"dir":%q,"downloaded_bytes":%d}`+"\n", bundle.Dir, bundle.Downloaded)
		return nil
	}
	fmt.Printf("Fetched %s into %s\n", humanize.IBytes(uint64(bundle.Downloaded)), bundle.Dir)
	return nil
}
