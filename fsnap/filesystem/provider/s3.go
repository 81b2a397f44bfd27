package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/ZanzyTHEbar/fsnap/fsnap/config"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/common"
	"github.com/ZanzyTHEbar/fsnap/fsnap/filesystem/types"
	"github.com/ZanzyTHEbar/fsnap/fsnap/location"
)

// SchemeS3 is the URL scheme served by S3Provider
const SchemeS3 = "s3"

// S3API is the subset of *s3.Client the provider calls.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Provider exposes one bucket as a read-only tree. Objects are files and
// key prefixes ending in "/" are directories. S3 has no symlinks, so Stat is
// Lstat and Readlink is unsupported.
type S3Provider struct {
	client S3API
	bucket string
}

// NewS3 builds a provider over a real S3 (or S3 compatible) endpoint.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3Provider, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3WithClient(client, cfg.Bucket), nil
}

// NewS3WithClient wraps an existing client, typically a fake in tests.
func NewS3WithClient(client S3API, bucket string) *S3Provider {
	return &S3Provider{client: client, bucket: bucket}
}

// key maps an s3:// URL path to an object key without the leading slash
func (p *S3Provider) key(u location.URL) string {
	return strings.TrimPrefix(path.Clean("/"+u.Path()), "/")
}

func dirMeta() types.Metadata {
	return types.Metadata{Kind: types.KindDir, Mode: fs.ModeDir | 0o555}
}

// Lstat resolves u to an object or, failing that, a non-empty key prefix.
func (p *S3Provider) Lstat(ctx context.Context, u location.URL) (types.Metadata, error) {
	if err := common.ValidateContextCancellation(ctx); err != nil {
		return types.Metadata{}, err
	}
	key := p.key(u)
	if key == "" {
		return dirMeta(), nil
	}

	head, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return types.Metadata{
			Kind:    types.KindFile,
			Size:    aws.ToInt64(head.ContentLength),
			Mode:    0o444,
			ModTime: aws.ToTime(head.LastModified),
		}, nil
	}
	if err = translateS3Error(err); !errors.Is(err, fs.ErrNotExist) {
		return types.Metadata{}, common.NewIOError("lstat", u.String(), err)
	}

	list, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		Prefix:  aws.String(key + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return types.Metadata{}, common.NewIOError("lstat", u.String(), translateS3Error(err))
	}
	if aws.ToInt32(list.KeyCount) == 0 && len(list.Contents) == 0 && len(list.CommonPrefixes) == 0 {
		return types.Metadata{}, common.NewIOError("lstat", u.String(), fs.ErrNotExist)
	}
	return dirMeta(), nil
}

// Stat equals Lstat; there is nothing to follow.
func (p *S3Provider) Stat(ctx context.Context, u location.URL) (types.Metadata, error) {
	return p.Lstat(ctx, u)
}

func (p *S3Provider) Readlink(_ context.Context, u location.URL) (location.URL, error) {
	return location.URL{}, common.NewIOError("readlink", u.String(), common.ErrUnsupported)
}

// ReadDir lists one level below u using "/" as the delimiter.
func (p *S3Provider) ReadDir(ctx context.Context, u location.URL) ([]types.DirEntry, error) {
	if err := common.ValidateContextCancellation(ctx); err != nil {
		return nil, err
	}
	prefix := p.key(u)
	if prefix != "" {
		prefix += "/"
	}

	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(p.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []types.DirEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, common.NewIOError("readdir", u.String(), translateS3Error(err))
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				entries = append(entries, types.DirEntry{Name: name, Meta: dirMeta()})
			}
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" || strings.Contains(name, "/") {
				continue // the directory marker object itself
			}
			entries = append(entries, types.DirEntry{Name: name, Meta: types.Metadata{
				Kind:    types.KindFile,
				Size:    aws.ToInt64(obj.Size),
				Mode:    0o444,
				ModTime: aws.ToTime(obj.LastModified),
			}})
		}
	}

	if len(entries) == 0 && prefix != "" {
		// An empty listing for a non-root prefix means the directory is absent
		if _, err := p.Lstat(ctx, u); err != nil {
			return nil, err
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// translateS3Error maps SDK API errors onto io/fs errors so classification
// works the same for every provider.
func translateS3Error(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	case "AccessDenied", "Forbidden", "403":
		return fmt.Errorf("%w: %w", fs.ErrPermission, err)
	}
	return err
}

var (
	_ Provider = (*S3Provider)(nil)
	_ S3API    = (*s3.Client)(nil)
)
