package spend

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV re-exports the dataset: the original header followed by the raw
// cells of each record, extra columns included.
func (d *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(d.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range d.records {
		if err := writer.Write(r.raw); err != nil {
			return fmt.Errorf("write line %d: %w", r.line, err)
		}
	}

	writer.Flush()

	return writer.Error()
}
