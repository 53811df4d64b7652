package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

const (
	Separator = ';'
	bom       = "\ufeff"
)

func TableFileName(t *domain.CanonicalTable, date string) string {
	return fmt.Sprintf("FIDC_%s_%s.csv", t.Source, date)
}

func SnapshotFileName(s *domain.Snapshot) string {
	return "FIDCS_" + s.Date.Format("2006_01_02") + ".csv"
}

func format(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeAll(w io.Writer, header []string, rows func(emit func([]string) error) error) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := rows(cw.Write); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes a canonical table with a leading Data column.
func WriteTable(w io.Writer, t *domain.CanonicalTable) error {
	header := append([]string{"Data"}, t.Columns...)
	return writeAll(w, header, func(emit func([]string) error) error {
		for i, d := range t.Dates {
			record := make([]string, 0, len(header))
			record = append(record, d.Format(domain.DateLayout))
			for _, v := range t.Values[i] {
				record = append(record, format(v))
			}
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSnapshot writes a snapshot with one line per source under a leading FIDC column.
func WriteSnapshot(w io.Writer, s *domain.Snapshot) error {
	header := append([]string{"FIDC"}, s.Columns...)
	return writeAll(w, header, func(emit func([]string) error) error {
		for i, source := range s.Sources {
			record := make([]string, 0, len(header))
			record = append(record, source)
			for _, v := range s.Values[i] {
				record = append(record, format(v))
			}
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExportSnapshot writes s into dir and returns the file path.
func ExportSnapshot(dir string, s *domain.Snapshot) (string, error) {
	return export(filepath.Join(dir, SnapshotFileName(s)), func(w io.Writer) error {
		return WriteSnapshot(w, s)
	})
}

// ExportTable writes t into dir and returns the file path.
func ExportTable(dir string, t *domain.CanonicalTable, date string) (string, error) {
	return export(filepath.Join(dir, TableFileName(t, date)), func(w io.Writer) error {
		return WriteTable(w, t)
	})
}

func export(path string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, f.Close()
}
