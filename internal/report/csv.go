package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"school-portal-gateway/pkg/errors"
)

// WriteCSV writes the header and one line per row. Fields containing
// commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		return errors.ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.cells()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
