package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the corpus provider uses.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates a corpus stored in a bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional; e.g. MinIO
	PathStyle bool
}

// S3FileSystem implements FileSystemProvider over object keys.
// Directories are key prefixes delimited by "/".
type S3FileSystem struct {
	ctx    context.Context
	client S3API
	bucket string
}

// NewS3FileSystem creates a provider backed by the default AWS credential chain.
// ctx bounds every request the provider issues.
func NewS3FileSystem(ctx context.Context, cfg S3Config) (*S3FileSystem, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewS3FileSystemWithClient(ctx, client, cfg.Bucket), nil
}

// NewS3FileSystemWithClient wraps an existing client.
func NewS3FileSystemWithClient(ctx context.Context, client S3API, bucket string) *S3FileSystem {
	if client == nil {
		panic("client cannot be nil")
	}
	return &S3FileSystem{ctx: ctx, client: client, bucket: bucket}
}

// ParseS3URI splits s3://bucket/prefix into bucket and prefix.
func ParseS3URI(uri string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, strings.Trim(prefix, "/"), bucket != ""
}

func (p *S3FileSystem) ReadFile(key string) ([]byte, error) {
	key = cleanKey(key)
	out, err := p.client.GetObject(p.ctx, &s3.GetObjectInput{Bucket: &p.bucket, Key: &key})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, &fs.PathError{Op: "open", Path: key, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (p *S3FileSystem) ReadDir(dir string) ([]FileInfo, error) {
	prefix := dirPrefix(dir)
	var infos []FileInfo

	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket:    &p.bucket,
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(p.ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
			infos = append(infos, &entryInfo{name: name, isDir: true})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			infos = append(infos, &entryInfo{
				name:    path.Base(key),
				size:    aws.ToInt64(obj.Size),
				modTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	if len(infos) == 0 {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

// Stat reports a key as a directory when any object lives beneath it,
// and as a file when an object with that exact key exists.
func (p *S3FileSystem) Stat(key string) (FileInfo, error) {
	key = cleanKey(key)

	beneath, err := p.firstObject(dirPrefix(key))
	if err != nil {
		return nil, fmt.Errorf("s3 stat %s: %w", key, err)
	}
	if beneath != nil {
		return &entryInfo{name: path.Base(key), isDir: true}, nil
	}

	obj, err := p.firstObject(key)
	if err != nil {
		return nil, fmt.Errorf("s3 stat %s: %w", key, err)
	}
	if obj != nil && aws.ToString(obj.Key) == key {
		return &entryInfo{name: path.Base(key), size: aws.ToInt64(obj.Size), modTime: aws.ToTime(obj.LastModified)}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: key, Err: fs.ErrNotExist}
}

func (p *S3FileSystem) firstObject(prefix string) (*types.Object, error) {
	out, err := p.client.ListObjectsV2(p.ctx, &s3.ListObjectsV2Input{
		Bucket:  &p.bucket,
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Contents) == 0 {
		return nil, nil
	}
	return &out.Contents[0], nil
}

func (p *S3FileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

func cleanKey(key string) string {
	return strings.Trim(path.Clean("/"+key), "/")
}

func dirPrefix(dir string) string {
	if key := cleanKey(dir); key != "" {
		return key + "/"
	}
	return ""
}

var _ FileSystemProvider = (*S3FileSystem)(nil)
