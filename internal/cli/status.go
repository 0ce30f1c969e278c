package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show model metadata and resource usage of the running server",
	Long:  `Query the running tagger server for the loaded model and current resource usage.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	data, status, err := NewClient().Get("/status")
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status != http.StatusOK {
		return apiError(status, data)
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp server.StatusResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	printStatus(os.Stdout, &resp)
	return nil
}

func printStatus(w io.Writer, resp *server.StatusResponse) {
	fmt.Fprintln(w, "=== Tagger Status ===")
	fmt.Fprintf(w, "Status:  %s\n", resp.Health.Status)
	fmt.Fprintf(w, "Version: %s\n", resp.Version)
	fmt.Fprintf(w, "Uptime:  %s\n", resp.Uptime)

	fmt.Fprintf(w, "\nModel:\n")
	if m := resp.Model; m != nil {
		fmt.Fprintf(w, "  Directory: %s\n", m.Metadata.Dir)
		fmt.Fprintf(w, "  Estimator: %s (%s scores)\n", m.Metadata.EstimatorType, m.Metadata.ScoreKind)
		fmt.Fprintf(w, "  Labels:    %s\n", humanize.Comma(int64(m.Metadata.Labels)))
		fmt.Fprintf(w, "  Features:  %s\n", humanize.Comma(int64(m.Metadata.Features)))
		fmt.Fprintf(w, "  Loaded:    %s (took %s)\n", humanize.Time(m.Metadata.LoadedAt), m.Metadata.LoadDuration)
		fmt.Fprintf(w, "  Policy:    top_k=%d threshold=%g\n", m.Config.TopK, m.Config.Threshold)
		if m.Metadata.Version != "" {
			fmt.Fprintf(w, "  Version:   %s\n", m.Metadata.Version)
		}
	} else {
		fmt.Fprintln(w, "  not loaded")
	}

	d := resp.Defaults
	fmt.Fprintf(w, "\nOperator defaults:\n")
	if d.TopK > 0 {
		fmt.Fprintf(w, "  top_k:     %d\n", d.TopK)
	}
	if d.Threshold != nil {
		fmt.Fprintf(w, "  threshold: %g\n", *d.Threshold)
	}
	fmt.Fprintf(w, "  max_top_k: %d\n", d.MaxTopK)

	r := resp.Resources
	if r == nil {
		return
	}

	fmt.Fprintf(w, "\nMemory:\n")
	fmt.Fprintf(w, "  Usage:     %.1f%% (%s / %s, %s available)\n", r.Memory.UsagePercent,
		humanize.IBytes(r.Memory.UsedBytes), humanize.IBytes(r.Memory.TotalBytes),
		humanize.IBytes(r.Memory.AvailableBytes))
	if r.Memory.ModelBytes > 0 {
		fmt.Fprintf(w, "  Bundle:    %s on disk\n", humanize.IBytes(r.Memory.ModelBytes))
	}

	if len(r.Storage) > 0 {
		fmt.Fprintf(w, "\nStorage:\n")
		paths := make([]string, 0, len(r.Storage))
		for p := range r.Storage {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			disk := r.Storage[p]
			fmt.Fprintf(w, "  %s: %s free / %s total\n", p,
				humanize.IBytes(disk.FreeBytes), humanize.IBytes(disk.TotalBytes))
		}
	}

	fmt.Fprintf(w, "\nProcess:\n")
	fmt.Fprintf(w, "  PID:        %d\n", r.Process.PID)
	fmt.Fprintf(w, "  RSS:        %s\n", humanize.IBytes(r.Process.RSSBytes))
	if f := r.ModelFootprint(); f > 0 {
		fmt.Fprintf(w, "  Footprint:  %.1fx bundle size\n", f)
	}
	fmt.Fprintf(w, "  CPU:        %.1f%%\n", r.Process.CPUPercent)
	fmt.Fprintf(w, "  Goroutines: %d\n", r.Process.Goroutines)
}
