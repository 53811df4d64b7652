package terminal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	config    string
	exportDir string
}

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func setupFixture(t *testing.T) *fixture {
	catalogue, err := filepath.Abs(filepath.Join("..", "..", "..", "configs", "catalogue.yaml"))
	require.NoError(t, err)

	dir := t.TempDir()
	input := filepath.Join(dir, "raw")
	require.NoError(t, os.MkdirAll(input, 0o755))
	writeWorkbook(t, filepath.Join(input, "FIDC_BARCELONA_2025_04_30.xlsx"), [][]any{
		{"Item", "31/03/2025", "30/04/2025"},
		{"PL Total", 1000.0, 2000.0},
		{"Direitos Creditórios", 100.0, 200.0},
		{"DC Sinal", -1.0, -1.0},
		{"PDD Total", 10.0, 20.0},
		{"31 a 60", 5.0, 7.0},
	})

	f := &fixture{exportDir: filepath.Join(dir, "export")}
	f.config = filepath.Join(dir, "fidc-atlas.yaml")
	settings := fmt.Sprintf("catalogue: %s\ndatabase: %s\ninput_dir: %s\nexport_dir: %s\n",
		catalogue, filepath.Join(dir, "fidc.db"), input, f.exportDir)
	require.NoError(t, os.WriteFile(f.config, []byte(settings), 0o600))
	return f
}

func (f *fixture) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := NewCLI(Options{
		Output:    &out,
		LogOutput: io.Discard,
		Args:      append(args, "--config", f.config),
	})
	err := cli.Execute()
	return out.String(), err
}

func TestCLI_EndToEnd(t *testing.T) {
	f := setupFixture(t)

	out, err := f.execute(t, "run", "--date", "2025-04-30", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, "Runs for 2025-04-01")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "=== BARCELONA ===")
	assert.Contains(t, out, "PDD Total (PL%)")
	assert.FileExists(t, filepath.Join(f.exportDir, "FIDCS_2025_04_01.csv"))

	out, err = f.execute(t, "sources")
	require.NoError(t, err)
	assert.Regexp(t, `BARCELONA\s+\|\s+stored`, out)
	assert.Regexp(t, `ALFA\s+\|\s+not stored`, out)

	out, err = f.execute(t, "runs", "--date", "2025-04-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Completion")

	out, err = f.execute(t, "export", "--date", "2025-04-30", "--source", "BARCELONA")
	require.NoError(t, err)
	path := filepath.Join(f.exportDir, "FIDC_BARCELONA_2025_04_30.csv")
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	out, err = f.execute(t, "consolidate", "--date", "2025-03-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot 2025-03-01")
}

func TestCLI_Reshape(t *testing.T) {
	f := setupFixture(t)

	out, err := f.execute(t, "reshape", "BARCELONA", "--date", "2025-04-30")
	require.NoError(t, err)
	assert.Contains(t, out, "BARCELONA (2 months")
	assert.Regexp(t, `Direitos Creditórios\s+\|\s+-200.00`, out)

	_, err = f.execute(t, "reshape", "ALFA", "--date", "2025-04-30")
	assert.Error(t, err, "no workbook for ALFA")
}

func TestCLI_Errors(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing date", []string{"run"}},
		{"malformed date", []string{"run", "--date", "30/04/2025"}},
		{"reshape without source", []string{"reshape", "--date", "2025-04-30"}},
		{"nothing to consolidate", []string{"consolidate", "--date", "2025-04-30"}},
		{"no stored snapshot", []string{"export", "--date", "2025-04-30"}},
		{"no workbooks for month", []string{"run", "--date", "2025-05-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
