package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

// FilteredCSVName is the default name of a filtered dataset export.
const FilteredCSVName = "filtered_spend_data"

// ExportChart writes c as <name>.svg into dir and returns the file path. An
// empty name falls back to the chart's default name.
func (s *Service) ExportChart(dir, name string, c Chart) (string, error) {
	return writeFile(dir, Filename(name, c.Name, ".svg"), func(w io.Writer) error {
		_, err := io.WriteString(w, string(c.SVG))
		return err
	})
}

// ExportCSV writes the dataset as <name>.csv into dir.
func (s *Service) ExportCSV(dir, name string, ds *spend.Dataset) (string, error) {
	return writeFile(dir, Filename(name, FilteredCSVName, ".csv"), ds.WriteCSV)
}

// ExportTable writes t as an XLSX workbook <name>.xlsx into dir.
func (s *Service) ExportTable(dir, name, title string, t spend.Table) (string, error) {
	return writeFile(dir, Filename(name, "table", ".xlsx"), func(w io.Writer) error {
		return WriteTableXLSX(w, t, title)
	})
}

func writeFile(dir, filename string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", filename, err)
	}

	return path, nil
}

// Filename turns a user supplied name into a safe file name with ext. A
// trailing ext typed by the user is not doubled; an empty name uses
// fallback.
func Filename(name, fallback, ext string) string {
	name = strings.TrimSuffix(filepath.Base(strings.TrimSpace(name)), ext)
	name = strings.Trim(name, ".")

	if name == "" || name == string(filepath.Separator) {
		name = fallback
	}

	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}

		return '_'
	}, name)

	safe = strings.Trim(safe, ".")
	if safe == "" {
		safe = "export"
	}

	return safe + ext
}
