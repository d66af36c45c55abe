package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fa-metadata/fa40/internal/advisor"
	"github.com/fa-metadata/fa40/internal/config"
	"github.com/fa-metadata/fa40/internal/extract"
	"github.com/fa-metadata/fa40/internal/metadata"
	"github.com/fa-metadata/fa40/internal/report"
	"github.com/fa-metadata/fa40/internal/schema"
	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		fileIndex    int
		limit        int
		output       string
		connectorOut string
		name         string
		schemaDir    string
	)

	cmd := &cobra.Command{
		Use:   "suggest <report.json|image.tif>",
		Short: "Suggest FA 4.0 field mappings for unmapped metadata",
		Long: `Scores every raw tag against the FA 4.0 schema's field names and
prints the likely mappings, best first. The scores are heuristic
(name similarity, known synonyms, value shape); every suggestion needs
human review before it lands in a connector.

With --connector, the suggestions above the promotion threshold are
written out as a starter connector file.`,
		Example: `  fa40 suggest results.json -f 1
  fa40 suggest wafer_scan.tif --connector connectors/newtool.json --name newtool`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			raw, source, err := rawForSuggest(cfg, args[0], fileIndex)
			if err != nil {
				return err
			}

			if schemaDir == "" {
				schemaDir = cfg.SchemaDir
			}
			sch, err := schema.Load(schemaDir)
			if err != nil {
				return fmt.Errorf("suggestions need the FA 4.0 schema: %w", err)
			}

			suggestions := advisor.Suggest(raw, sch.Paths())
			fmt.Printf("%s: %d suggestion(s)\n", source, len(suggestions))
			shown := suggestions
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for _, s := range shown {
				fmt.Printf("  %.2f  %s.%s -> %s", s.Score, s.Source, s.Tag, s.TargetField)
				if s.Notes != "" {
					fmt.Printf("  (%s)", s.Notes)
				}
				fmt.Println()
			}

			if output != "" {
				data, err := json.MarshalIndent(suggestions, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal suggestions: %w", err)
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return fmt.Errorf("failed to write suggestions: %w", err)
				}
				fmt.Printf("Suggestions written to %s\n", output)
			}

			if connectorOut != "" {
				if name == "" {
					base := filepath.Base(connectorOut)
					name = strings.TrimSuffix(base, filepath.Ext(base))
				}
				conn := advisor.GenerateConnector(raw, suggestions, name, time.Now())
				data, err := json.MarshalIndent(conn, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal connector: %w", err)
				}
				if err := os.WriteFile(connectorOut, data, 0644); err != nil {
					return fmt.Errorf("failed to write connector: %w", err)
				}
				fmt.Printf("Starter connector written to %s (review before use)\n", connectorOut)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&fileIndex, "file-index", "f", 0, "File index when the input is a report (see inspect list)")
	cmd.Flags().IntVar(&limit, "limit", 15, "Suggestions to print (0 = all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the full suggestion list as JSON")
	cmd.Flags().StringVar(&connectorOut, "connector", "", "Write a starter connector built from the suggestions")
	cmd.Flags().StringVar(&name, "name", "", "Connector name for --connector (default: output file stem)")
	cmd.Flags().StringVar(&schemaDir, "schema-dir", "", "FA 4.0 schema directory (overrides config)")

	return cmd
}

// rawForSuggest accepts either an extraction report or a TIFF file and
// returns one file's raw metadata plus a label for output.
func rawForSuggest(cfg config.Config, input string, fileIndex int) (*metadata.Raw, string, error) {
	if extract.IsTIFF(input) {
		ex, err := newExtractor(cfg)
		if err != nil {
			return nil, "", err
		}
		raw, failures, err := ex.Extract(input)
		if err != nil {
			return nil, "", err
		}
		for _, f := range failures {
			slog.Warn("backend failed", "backend", f.Backend, "reason", f.Reason)
		}
		return raw, input, nil
	}

	rep, err := report.Load(input)
	if err != nil {
		return nil, "", err
	}
	files := rep.Files()
	if fileIndex < 0 || fileIndex >= len(files) {
		return nil, "", fmt.Errorf("file index %d out of range (report has %d file(s))", fileIndex, len(files))
	}
	raw, _ := rep.Raw(files[fileIndex])
	return raw, files[fileIndex], nil
}
