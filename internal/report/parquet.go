package report

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// TagRow is the flat per-tag row used for the Parquet export. Large batch
// runs produce reports too big to grep comfortably; a columnar copy keeps
// them queryable.
type TagRow struct {
	File   string `parquet:"file"`
	Source string `parquet:"source"`
	Tag    string `parquet:"tag"`
	Value  string `parquet:"value"`
	Kind   string `parquet:"kind"`
	Custom bool   `parquet:"custom"`
}

// TagRows flattens the report's full metadata, ordered by file, source, tag.
func (r *Report) TagRows() []TagRow {
	var rows []TagRow
	for _, file := range r.Files() {
		fm := r.FullMetadata[file]
		for _, source := range sortedKeys(fm.Sources) {
			tags := fm.Sources[source]
			for _, tag := range sortedKeys(tags) {
				v := tags[tag]
				id, err := strconv.Atoi(tag)
				rows = append(rows, TagRow{
					File:   file,
					Source: source,
					Tag:    tag,
					Value:  v.Text(),
					Kind:   v.Kind.String(),
					Custom: err == nil && metadata.IsCustomTagID(id),
				})
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].File != rows[j].File {
			return rows[i].File < rows[j].File
		}
		if rows[i].Source != rows[j].Source {
			return rows[i].Source < rows[j].Source
		}
		return rows[i].Tag < rows[j].Tag
	})
	return rows
}

// SaveParquet writes the flat tag rows to a Parquet file.
func (r *Report) SaveParquet(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[TagRow](f)
	rows := r.TagRows()
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
