package cmd

import (
	"fmt"
	"sort"

	"github.com/fa-metadata/fa40/internal/inspect"
	"github.com/fa-metadata/fa40/internal/report"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var fileIndex int

	cmd := &cobra.Command{
		Use:   "inspect <report.json> <list|tag|custom|compare> [pattern]",
		Short: "Explore an extraction report while authoring connectors",
		Long: `Answers the questions that come up while writing a connector: which
files a report covers, what a tag holds, which proprietary tags the
equipment wrote, and how a tag varies across files.

Commands:
  list              list the report's files with their indices
  tag <pattern>     show tags matching pattern in one file (-f selects it)
  custom            show the proprietary tags (IDs 32000-32999) of one file
  compare <pattern> show a tag's values across every file

"inspect" is accepted as an alias for "tag".`,
		Example: `  fa40 inspect results.json list
  fa40 inspect results.json tag resolution -f 2
  fa40 inspect results.json custom
  fa40 inspect results.json compare Software`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.Load(args[0])
			if err != nil {
				return err
			}
			if len(rep.FullMetadata) == 0 {
				return fmt.Errorf("report %s has no per-file metadata (extracted with --no-full-data?)", args[0])
			}

			command := args[1]
			pattern := ""
			if len(args) == 3 {
				pattern = args[2]
			}

			switch command {
			case "list":
				return inspectList(rep)
			case "tag", "inspect":
				if pattern == "" {
					return fmt.Errorf("%s requires a pattern argument", command)
				}
				return inspectTag(rep, fileIndex, pattern)
			case "custom":
				return inspectCustom(rep, fileIndex)
			case "compare":
				if pattern == "" {
					return fmt.Errorf("compare requires a pattern argument")
				}
				return inspectCompare(rep, pattern)
			}
			return fmt.Errorf("unknown inspect command %q", command)
		},
	}

	cmd.Flags().IntVarP(&fileIndex, "file-index", "f", 0, "File index for tag/custom (see list)")

	return cmd
}

func inspectList(rep *report.Report) error {
	files := rep.Files()
	fmt.Printf("%d file(s) in report\n", len(files))
	for i, path := range files {
		fm := rep.FullMetadata[path]
		tags := 0
		for _, source := range fm.Sources {
			tags += len(source)
		}
		fmt.Printf("  [%d] %s (%d tag(s))\n", i, path, tags)
	}
	return nil
}

func inspectTag(rep *report.Report, index int, pattern string) error {
	path, fm, ok := inspect.FileByIndex(rep, index)
	if !ok {
		return fmt.Errorf("file index %d out of range", index)
	}
	matches := inspect.SearchTags(fm, pattern)
	fmt.Printf("%s: %d tag(s) matching %q\n", path, len(matches), pattern)
	for _, m := range matches {
		fmt.Printf("  %s.%s = %s\n", m.Ref.Source, m.Ref.Tag, inspect.Preview(m.Value))
	}
	return nil
}

func inspectCustom(rep *report.Report, index int) error {
	path, fm, ok := inspect.FileByIndex(rep, index)
	if !ok {
		return fmt.Errorf("file index %d out of range", index)
	}
	matches := inspect.CustomTags(fm)
	if len(matches) == 0 {
		fmt.Printf("%s: no custom tags\n", path)
		return nil
	}
	fmt.Printf("%s: %d custom tag(s)\n", path, len(matches))
	for _, m := range matches {
		fmt.Printf("  %s.%s = %s\n", m.Ref.Source, m.Ref.Tag, inspect.Preview(m.Value))
	}
	return nil
}

func inspectCompare(rep *report.Report, pattern string) error {
	byFile := inspect.CompareAcross(rep, pattern)
	if len(byFile) == 0 {
		fmt.Printf("no file carries a tag matching %q\n", pattern)
		return nil
	}

	files := make([]string, 0, len(byFile))
	for path := range byFile {
		files = append(files, path)
	}
	sort.Strings(files)

	for _, path := range files {
		fmt.Println(path)
		for _, m := range byFile[path] {
			fmt.Printf("  %s.%s = %s\n", m.Ref.Source, m.Ref.Tag, inspect.Preview(m.Value))
		}
	}
	return nil
}
