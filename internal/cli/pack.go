package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alexandrapadonou/tagStackoverflow/internal/artifact"
)

var packCmd = &cobra.Command{
	Use:   "pack <dir>",
	Short: "Zip a bundle directory for upload to blob storage",
	Long: `Validate the bundle in dir and write its four files at the root of a zip
archive. The archive is what serve and fetch download from the blob URL.`,
	Example: `  tagger pack ./models -o bundle.zip`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPack,
}

var packOutput string

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "bundle.zip", "archive path")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	size, err := packBundle(args[0], packOutput)
	if err != nil {
		return err
	}

	if jsonOut {
		fmt.Printf(`{"archive":%q,"bytes":%d}`+"\n", packOutput, size)
		return nil
	}
	fmt.Printf("Wrote %s (%s)\n", packOutput, humanize.IBytes(uint64(size)))
	return nil
}

// packBundle writes the archive through a temporary file so that a failed
// pack never leaves a truncated archive at output.
func packBundle(dir, output string) (int64, error) {
	tmp := output + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}

	if err := artifact.Pack(dir, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, output); err != nil {
		os.Remove(tmp)
		return 0, err
	}

	info, err := os.Stat(output)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
