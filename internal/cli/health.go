package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the server is up and has a model loaded",
	Long: `Query /health on the running server. Exits non-zero when the server is
unreachable or degraded.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	data, status, err := NewClient().Get("/health")
	if err != nil {
		return fmt.Errorf("failed to get health: %w", err)
	}
	if status != http.StatusOK && status != http.StatusServiceUnavailable {
		return apiError(status, data)
	}

	var h inference.Health
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}

	if jsonOut {
		fmt.Println(string(data))
	} else {
		fmt.Printf("status: %s (model loaded: %t)\n", h.Status, h.ModelLoaded)
	}

	if h.Status != inference.StatusOK {
		return fmt.Errorf("server is %s", h.Status)
	}
	return nil
}
