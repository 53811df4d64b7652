package csvfile

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshot(t *testing.T) {
	snap := &domain.Snapshot{
		Date:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Sources: []string{"ALFA", "BETA"},
		Columns: []string{"PL Total", "Taxa; Média"},
		Values:  [][]float64{{1234.5, math.NaN()}, {-0.25, 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))

	want := "\ufeffFIDC;PL Total;\"Taxa; Média\"\nALFA;1234.5;\nBETA;-0.25;2\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTable(t *testing.T) {
	table := &domain.CanonicalTable{
		Source:  "ALFA",
		Columns: []string{"PL Total"},
		Dates:   []time.Time{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		Values:  [][]float64{{100}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))
	assert.Equal(t, "\ufeffData;PL Total\n2025-03-01;100\n", buf.String())
}

func TestExportSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "grouped")
	snap := &domain.Snapshot{
		Date:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Sources: []string{"ALFA"},
		Columns: []string{"PL Total"},
		Values:  [][]float64{{1}},
	}

	path, err := ExportSnapshot(dir, snap)
	require.NoError(t, err)
	assert.Equal(t, "FIDCS_2025_04_01.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffFIDC;PL Total"))
}
