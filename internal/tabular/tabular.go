// Package tabular defines the read/write-rows contract the pipeline uses
// for every tabular input and output. The physical file format sits behind
// these ports; the rest of the code only ever sees headers and rows.
package tabular

import "context"

// Row is one record keyed by column header.
type Row map[string]string

// Source reads a whole tabular dataset.
type Source interface {
	// ReadAll returns the header and all data rows.
	ReadAll(ctx context.Context) (header []string, rows [][]string, err error)
}

// Sink writes a whole tabular dataset, replacing any previous content.
type Sink interface {
	WriteAll(ctx context.Context, header []string, rows [][]string) error
}

// Records converts positional rows into header-keyed rows. Short rows are
// padded with empty strings; extra cells are dropped.
func Records(header []string, rows [][]string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		rec := make(Row, len(header))
		for i, h := range header {
			if i < len(r) {
				rec[h] = r[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}
