package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fa-metadata/fa40/internal/config"
	"github.com/fa-metadata/fa40/internal/connector"
	"github.com/fa-metadata/fa40/internal/header"
	"github.com/fa-metadata/fa40/internal/schema"
	"github.com/spf13/cobra"
)

func newHeaderCmd() *cobra.Command {
	var (
		output      string
		validate    bool
		strict      bool
		prettyPrint bool
	)

	cmd := &cobra.Command{
		Use:   "header <image.tif> <connector.json>",
		Short: "Generate an FA 4.0 standardized header from a TIFF file",
		Long: `Extracts the image's raw metadata, applies the connector's field
mappings and transforms, and writes the resulting FA 4.0 standardized
header as JSON next to the image (or wherever --output points).

A connector that fails to load stops the run before the image is
touched; use --validate to also check required-field completeness.`,
		Example: `  fa40 header wafer_scan.tif connectors/semishop.json

  # Validate and fail the exit code on missing required fields
  fa40 header wafer_scan.tif connectors/semishop.json --validate --strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, connectorPath := args[0], args[1]

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			conn, err := connector.Load(connectorPath)
			if err != nil {
				return err
			}

			ex, err := newExtractor(cfg)
			if err != nil {
				return err
			}
			raw, failures, err := ex.Extract(imagePath)
			if err != nil {
				return err
			}
			for _, f := range failures {
				slog.Warn("backend failed", "backend", f.Backend, "reason", f.Reason)
			}
			if !conn.Matches(raw) {
				slog.Warn("connector identification rules did not match this file",
					"connector", conn.Metadata.Name, "file", imagePath)
			}

			doc := header.NewBuilder().Build(raw, conn, imagePath)

			if output == "" {
				base := filepath.Base(imagePath)
				stem := strings.TrimSuffix(base, filepath.Ext(base))
				output = filepath.Join(filepath.Dir(imagePath), stem+"_fa40_header.json")
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal header: %w", err)
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			fmt.Printf("Header written to %s\n", output)

			if prettyPrint {
				fmt.Println(string(data))
			}

			if validate || strict || cfg.Strict {
				result := header.Validate(doc, conn, loadSchemaFields(cfg.SchemaDir))
				printValidation(result)
				if (strict || cfg.Strict) && !result.Complete() {
					return fmt.Errorf("header is missing %d required field(s)", len(result.MissingRequired))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Header output path (default: <image>_fa40_header.json)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Report required/optional field completeness")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit nonzero when required fields are missing (implies --validate)")
	cmd.Flags().BoolVar(&prettyPrint, "pretty-print", false, "Also print the header to stdout")

	return cmd
}

// loadSchemaFields loads the section schemas when available. Validation
// degrades to connector-only checks when they are not.
func loadSchemaFields(dir string) map[string][]string {
	sch, err := schema.Load(dir)
	if err != nil {
		slog.Debug("schema unavailable, skipping unknown-field checks", "dir", dir, "err", err)
		return nil
	}
	return sch.Fields()
}

func printValidation(result header.ValidationResult) {
	if result.Complete() {
		fmt.Println("Validation: all required fields present")
	}
	for _, path := range result.MissingRequired {
		fmt.Printf("Validation: missing required field %s\n", path)
	}
	for _, path := range result.UnknownFields {
		fmt.Printf("Validation: field %s is not in the FA 4.0 schema\n", path)
	}
	fmt.Printf("Validation: %d optional field(s) populated\n", len(result.PresentOptional))
}
