package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/fa-metadata/fa40/internal/config"
	"github.com/fa-metadata/fa40/internal/extract"
	"github.com/fa-metadata/fa40/internal/report"
	"github.com/spf13/cobra"
)

// newExtractor builds the extractor the effective configuration asks for.
func newExtractor(cfg config.Config) (*extract.Extractor, error) {
	bs, err := extract.ByName(cfg.Backends)
	if err != nil {
		return nil, fmt.Errorf("invalid backend configuration: %w", err)
	}
	policy := cfg.MergePolicy
	if mergePolicyFlag != "" {
		policy = mergePolicyFlag
	}
	return extract.New(bs, policy), nil
}

func newExtractCmd() *cobra.Command {
	var (
		output     string
		recursive  bool
		tagsOnly   bool
		noFullData bool
		parquetOut string
	)

	cmd := &cobra.Command{
		Use:   "extract <file-or-directory>",
		Short: "Extract raw TIFF metadata into an extraction report",
		Long: `Runs every configured metadata backend over one TIFF file or a
directory of them and writes the merged raw metadata as a JSON
extraction report. Inspection and mapping suggestion both work from
that report, so a slow network share only has to be read once.`,
		Example: `  # One file
  fa40 extract wafer_scan.tif

  # A directory tree, summary only
  fa40 extract ./scans --recursive --no-full-data

  # Flat tag table for spreadsheet tooling
  fa40 extract ./scans --parquet tags.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			ex, err := newExtractor(cfg)
			if err != nil {
				return err
			}

			files, err := resolveInputs(args[0], recursive)
			if err != nil {
				return err
			}

			rb := report.NewBuilder()
			failed := 0
			for _, path := range files {
				raw, failures, err := ex.Extract(path)
				if err != nil {
					slog.Error("extraction failed", "file", path, "err", err)
					failed++
					continue
				}
				rb.Add(path, raw, failures)
			}
			if failed == len(files) {
				return fmt.Errorf("all %d file(s) failed extraction", failed)
			}

			rep := rb.Build(!noFullData)
			printTagSummary(rep)

			if !tagsOnly {
				if err := rep.Save(output); err != nil {
					return err
				}
				fmt.Printf("Report written to %s\n", output)
			}
			if parquetOut != "" {
				if err := rep.SaveParquet(parquetOut); err != nil {
					return err
				}
				fmt.Printf("Tag table written to %s\n", parquetOut)
			}

			fmt.Printf("Processed %d file(s), %d failed\n", len(files)-failed, failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tiff_metadata_extraction_results.json", "Report output path")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recurse into subdirectories")
	cmd.Flags().BoolVar(&tagsOnly, "tags-only", false, "Print the tag summary without writing a report")
	cmd.Flags().BoolVar(&noFullData, "no-full-data", false, "Omit per-file metadata from the report")
	cmd.Flags().StringVar(&parquetOut, "parquet", "", "Also write a flattened tag table as Parquet")

	return cmd
}

// resolveInputs expands the argument into the TIFF files to process.
func resolveInputs(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if !info.IsDir() {
		if !extract.IsTIFF(path) {
			return nil, fmt.Errorf("%s is not a TIFF file", path)
		}
		return []string{path}, nil
	}
	files, err := extract.ScanDirectory(path, recursive)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no TIFF files found under %s", path)
	}
	return files, nil
}

func printTagSummary(rep report.Report) {
	fmt.Printf("Unique tags: %d\n", rep.TagSummary.TotalUniqueTags)
	sources := make([]string, 0, len(rep.TagSummary.TagsBySource))
	for source := range rep.TagSummary.TagsBySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		fmt.Printf("  %-10s %d tag(s)\n", source, len(rep.TagSummary.TagsBySource[source]))
	}
}
