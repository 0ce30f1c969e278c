package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/artifact"
	"github.com/alexandrapadonou/tagStackoverflow/internal/config"
	"github.com/alexandrapadonou/tagStackoverflow/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check that a directory holds a loadable model bundle",
	Long: `Check the bundle files in dir (default: model.dir), then load them to verify
that the vectorizer, estimator and label binarizer agree on their sizes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

type validateResult struct {
	Dir        string          `json:"dir"`
	Valid      bool            `json:"valid"`
	Error      string          `json:"error,omitempty"`
	Missing    []string        `json:"missing,omitempty"`
	Unexpected []string        `json:"unexpected,omitempty"`
	Metadata   *model.Metadata `json:"metadata,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := config.Resolve(cfgFile)
		if err != nil {
			return err
		}
		dir = cfg.Model.Dir
	}

	res := validateBundle(dir)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if res.Valid {
		m := res.Metadata
		fmt.Printf("Bundle %s is valid\n", dir)
		fmt.Printf("  estimator: %s (%s scores)\n", m.EstimatorType, m.ScoreKind)
		fmt.Printf("  labels:    %s\n", humanize.Comma(int64(m.Labels)))
		fmt.Printf("  features:  %s\n", humanize.Comma(int64(m.Features)))
	}

	if !res.Valid {
		return errors.New(res.Error)
	}
	return nil
}

func validateBundle(dir string) validateResult {
	res := validateResult{Dir: dir}

	state, err := model.LoadDir(dir)
	if err != nil {
		res.Error = err.Error()
		var verr *artifact.ValidationError
		if errors.As(err, &verr) {
			res.Missing = append(res.Missing, verr.Missing...)
			sort.Strings(res.Missing)
			res.Unexpected = verr.Unexpected
		}
		return res
	}

	meta := state.Metadata()
	res.Valid = true
	res.Metadata = &meta
	return res
}
