package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var reportDate = time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *mockObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "PL Total"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 10))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "FIDC_ALFA_2025_04_30.xlsx", FileName("ALFA", reportDate))

	tests := []struct {
		file string
		want string
		ok   bool
	}{
		{"FIDC_ALFA_2025_04_30.xlsx", "ALFA", true},
		{"FIDC_ONE7_2025_04_30.xlsx", "ONE7", true},
		{"FIDC_ALFA_2025_03_31.xlsx", "", false},
		{"ALFA_2025_04_30.xlsx", "", false},
		{"FIDC__2025_04_30.xlsx", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, ok := SourceName(tt.file, reportDate)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalProvider(t *testing.T) {
	dir := t.TempDir()
	data := workbookBytes(t)
	for _, name := range []string{"FIDC_BETA_2025_04_30.xlsx", "FIDC_ALFA_2025_04_30.xlsx", "FIDC_GAMA_2025_03_31.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	p := NewLocal(dir)
	ctx := context.Background()

	names, err := p.List(ctx, reportDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALFA", "BETA"}, names)

	raw, err := p.Fetch(ctx, "ALFA", reportDate)
	require.NoError(t, err)
	assert.Equal(t, "ALFA", raw.Source)
	assert.Equal(t, []any{"PL Total", 10.0}, raw.Sheets[0].Cells[1])

	_, err = p.Fetch(ctx, "DELTA", reportDate)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewLocal(filepath.Join(dir, "missing")).List(ctx, reportDate)
	assert.Error(t, err)
}

func TestS3Provider(t *testing.T) {
	ctx := context.Background()

	t.Run("list pages", func(t *testing.T) {
		api := &mockObjectAPI{}
		api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
			return awssdk.ToString(in.Prefix) == "reports/2025/04/" && in.ContinuationToken == nil
		})).Return(&s3.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: awssdk.String("reports/2025/04/FIDC_BETA_2025_04_30.xlsx")},
				{Key: awssdk.String("reports/2025/04/readme.md")},
			},
			IsTruncated:           awssdk.Bool(true),
			NextContinuationToken: awssdk.String("next"),
		}, nil).Once()
		api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
			return awssdk.ToString(in.ContinuationToken) == "next"
		})).Return(&s3.ListObjectsV2Output{
			Contents: []types.Object{{Key: awssdk.String("reports/2025/04/FIDC_ALFA_2025_04_30.xlsx")}},
		}, nil).Once()

		names, err := NewS3(api, "bucket", "reports").List(ctx, reportDate)
		require.NoError(t, err)
		assert.Equal(t, []string{"ALFA", "BETA"}, names)
		api.AssertExpectations(t)
	})

	t.Run("fetch", func(t *testing.T) {
		api := &mockObjectAPI{}
		api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
			return awssdk.ToString(in.Key) == "reports/2025/04/FIDC_ALFA_2025_04_30.xlsx"
		})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(workbookBytes(t)))}, nil)

		raw, err := NewS3(api, "bucket", "reports").Fetch(ctx, "ALFA", reportDate)
		require.NoError(t, err)
		assert.Equal(t, "ALFA", raw.Source)
	})

	t.Run("missing key", func(t *testing.T) {
		api := &mockObjectAPI{}
		api.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

		_, err := NewS3(api, "bucket", "reports").Fetch(ctx, "ALFA", reportDate)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list failure", func(t *testing.T) {
		api := &mockObjectAPI{}
		api.On("ListObjectsV2", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

		_, err := NewS3(api, "bucket", "reports").List(ctx, reportDate)
		assert.ErrorContains(t, err, "denied")
	})
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), domain.AcquisitionProfile{Name: "dev", Type: domain.ProfileTypeLocal, Dir: "."})
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = NewProvider(context.Background(), domain.AcquisitionProfile{Name: "x", Type: "ftp"})
	assert.Error(t, err)
}
