package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/logger"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server"
)

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Predict tags for a question",
	Long: `Predict tags for a question. The text is taken from the arguments, or from
stdin when no argument (or "-") is given.

By default the running server is queried. With --local the bundle is loaded
in-process from the configured model directory or blob URL.`,
	Example: `  tagger predict "How do I merge two dataframes in pandas?"
  tagger predict --top-k 3 --threshold 0.2 < question.html
  tagger predict --local "Flask route returns 404"`,
	RunE: runPredict,
}

var (
	predictTopK      int
	predictThreshold float64
	predictLocal     bool
)

func init() {
	predictCmd.Flags().IntVarP(&predictTopK, "top-k", "k", 0, "maximum number of tags")
	predictCmd.Flags().Float64VarP(&predictThreshold, "threshold", "t", 0, "minimum score for a tag")
	predictCmd.Flags().BoolVar(&predictLocal, "local", false, "load the model in-process instead of calling the server")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	text, err := predictText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var opts inference.Options
	if cmd.Flags().Changed("top-k") {
		opts.TopK = &predictTopK
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = &predictThreshold
	}

	var res *inference.Result
	if predictLocal {
		res, err = predictLocally(cmd, text, opts)
	} else {
		res, err = predictRemote(NewClient(), text, opts)
	}
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), res)
}

func predictText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func predictRemote(c *Client, text string, opts inference.Options) (*inference.Result, error) {
	req := server.PredictRequest{
		Text:      &text,
		TopK:      opts.TopK,
		Threshold: opts.Threshold,
	}

	data, status, err := c.Post("/predict", req)
	if err != nil {
		return nil, fmt.Errorf("failed to predict: %w", err)
	}
	if status != http.StatusOK {
		return nil, apiError(status, data)
	}

	var res inference.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	return &res, nil
}

func predictLocally(cmd *cobra.Command, text string, opts inference.Options) (*inference.Result, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, "text")

	loader := newLoader(cfg, log)
	if _, err := loader.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	svc := inference.NewService(loader, inferenceDefaults(cfg))
	return svc.Predict(context.Background(), text, opts)
}

func printResult(w io.Writer, res *inference.Result) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if len(res.Tags) == 0 {
		fmt.Fprintf(w, "No tags above threshold %g\n", res.Policy.Threshold)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tSCORE")
	for _, tag := range res.Tags {
		fmt.Fprintf(tw, "%s\t%.4f\n", tag.Label, tag.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if verbose {
		p := res.Policy
		fmt.Fprintf(w, "\ntop_k=%d (%s) threshold=%g (%s)\n", p.TopK, p.TopKSource, p.Threshold, p.ThresholdSource)
	}
	return nil
}
