package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tagger version",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOut {
			fmt.Printf(`{"version":%q,"go":%q}`+"\n", Version, runtime.Version())
			return
		}
		fmt.Printf("tagger %s (%s)\n", Version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
