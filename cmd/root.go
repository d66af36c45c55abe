package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	mergePolicyFlag string
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fa40",
		Short: "TIFF metadata extraction and FA 4.0 standardized header generation",
		Long: `fa40 maps proprietary TIFF metadata from failure-analysis tools into
FA 4.0 standardized JSON headers.

Per-manufacturer connector configurations describe which raw tags feed
which header fields; the tool extracts, transforms, and validates
without ever touching the image pixel data.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to fa40.yaml (default: ./fa40.yaml if present)")
	cmd.PersistentFlags().StringVar(&mergePolicyFlag, "merge-policy", "", "Duplicate-tag merge policy, \"first\" or \"last\" (overrides config)")

	// Add subcommands
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newHeaderCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
