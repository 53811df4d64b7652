package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
)

var ErrNotFound = errors.New("source workbook not found")

const (
	filePrefix = "FIDC_"
	fileExt    = ".xlsx"
	dateLayout = "2006_01_02"
)

// Provider lists and fetches the monthly source workbooks of one acquisition profile.
type Provider interface {
	List(ctx context.Context, date time.Time) ([]string, error)
	Fetch(ctx context.Context, source string, date time.Time) (*domain.RawTable, error)
}

// FileName is the workbook name for a source and reporting date, e.g. FIDC_ALFA_2025_04_30.xlsx.
func FileName(source string, date time.Time) string {
	return filePrefix + source + "_" + date.Format(dateLayout) + fileExt
}

// SourceName extracts the source from a workbook name for the given date.
func SourceName(file string, date time.Time) (string, bool) {
	suffix := "_" + date.Format(dateLayout) + fileExt
	if !strings.HasPrefix(file, filePrefix) || !strings.HasSuffix(file, suffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(file, filePrefix), suffix)
	return name, name != ""
}

// NewProvider builds the provider described by profile.
func NewProvider(ctx context.Context, profile domain.AcquisitionProfile) (Provider, error) {
	switch profile.Type {
	case domain.ProfileTypeLocal, "":
		return NewLocal(profile.Dir), nil
	case domain.ProfileTypeS3:
		return NewS3FromProfile(ctx, profile)
	default:
		return nil, fmt.Errorf("unsupported profile type %q for %s", profile.Type, profile.Name)
	}
}
