package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"github.com/de-tools/fidc-atlas/pkg/store/workbook"
)

const DefaultRegion = "us-east-1"

// ObjectAPI is the subset of the S3 client the provider uses.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Provider struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewS3 reads workbooks stored under {prefix}/{YYYY}/{MM}/ in bucket.
func NewS3(client ObjectAPI, bucket, prefix string) Provider {
	return &s3Provider{client: client, bucket: bucket, prefix: prefix}
}

func NewS3FromProfile(ctx context.Context, profile domain.AcquisitionProfile) (Provider, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile.AWSProfile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile.AWSProfile))
	}
	if profile.Region != "" {
		opts = append(opts, config.WithRegion(profile.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewS3(s3.NewFromConfig(cfg), profile.Bucket, profile.Prefix), nil
}

func (p *s3Provider) folder(date time.Time) string {
	return path.Join(p.prefix, date.Format("2006/01"))
}

func (p *s3Provider) List(ctx context.Context, date time.Time) ([]string, error) {
	folder := p.folder(date) + "/"
	pages := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: awssdk.String(p.bucket),
		Prefix: awssdk.String(folder),
	})

	var names []string
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", p.bucket, folder, err)
		}
		for _, obj := range page.Contents {
			if name, ok := SourceName(path.Base(awssdk.ToString(obj.Key)), date); ok {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

func (p *s3Provider) Fetch(ctx context.Context, source string, date time.Time) (*domain.RawTable, error) {
	key := path.Join(p.folder(date), FileName(source, date))
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(p.bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, p.bucket, key)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", p.bucket, key, err)
	}
	defer out.Body.Close()

	return workbook.Read(out.Body, source)
}
