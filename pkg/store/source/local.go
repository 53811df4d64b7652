package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/store/workbook"
)

type localProvider struct {
	dir string
}

// NewLocal reads workbooks from a flat directory.
func NewLocal(dir string) Provider {
	return &localProvider{dir: dir}
}

func (p *localProvider) List(_ context.Context, date time.Time) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := SourceName(e.Name(), date); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (p *localProvider) Fetch(_ context.Context, source string, date time.Time) (*domain.RawTable, error) {
	path := filepath.Join(p.dir, FileName(source, date))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	return workbook.Read(f, source)
}
