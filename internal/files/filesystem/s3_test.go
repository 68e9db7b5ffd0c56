package filesystem

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves ListObjectsV2 and GetObject from a map of keys.
type fakeS3 struct {
	objects map[string]string
	lists   int
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.lists++
	prefix := aws.ToString(in.Prefix)
	delimiter := aws.ToString(in.Delimiter)

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+1]
				if !seen[cp] {
					seen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objects[k])))})
		if in.MaxKeys != nil && int32(len(out.Contents)) >= *in.MaxKeys {
			break
		}
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func newFakeCorpus() *S3FileSystem {
	client := &fakeS3{objects: map[string]string{
		"pulse/map/karnataka/2023/1.json": `{"data":{}}`,
		"pulse/map/karnataka/2023/2.json": `{}`,
		"pulse/map/karnataka/notes.txt":   "x",
		"pulse/map/karnataka-old/x.json":  "{}",
		"pulse/map/goa/2021/4.json":       "{}",
	}}
	return NewS3FileSystemWithClient(context.Background(), client, "phonepe")
}

func TestS3FileSystem_ReadDir(t *testing.T) {
	p := newFakeCorpus()

	regions, err := p.ReadDir("pulse/map")
	require.NoError(t, err)
	assert.Equal(t, []string{"goa", "karnataka", "karnataka-old"}, names(regions))
	for _, r := range regions {
		assert.True(t, r.IsDir())
	}

	entries, err := p.ReadDir(p.Join("pulse/map", "karnataka"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "notes.txt"}, names(entries))
	assert.True(t, entries[0].IsDir())
	assert.False(t, entries[1].IsDir())

	_, err = p.ReadDir("pulse/absent")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3FileSystem_StatAndReadFile(t *testing.T) {
	p := newFakeCorpus()

	info, err := p.Stat("pulse/map/karnataka")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = p.Stat("pulse/map/karnataka/2023/1.json")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, int64(11), info.Size())

	_, err = p.Stat("pulse/map/kerala")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	content, err := p.ReadFile("/pulse/map/karnataka/2023/1.json")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, string(content))

	_, err = p.ReadFile("pulse/map/karnataka/2023/3.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		prefix string
		ok     bool
	}{
		{"s3://phonepe/pulse/data", "phonepe", "pulse/data", true},
		{"s3://phonepe", "phonepe", "", true},
		{"s3://phonepe/pulse/", "phonepe", "pulse", true},
		{"/local/data", "", "", false},
		{"s3://", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, prefix, ok := ParseS3URI(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}
