package media

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	err     error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadBuildsKeyAndURL(t *testing.T) {
	fake := &fakeObjects{}
	p := newProvider(fake, "lms", "https://cdn.example.com/lms/")

	avatar, err := p.Upload(context.Background(), "p1", []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "lms", aws.ToString(put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, fake.bodies[0])

	assert.True(t, strings.HasPrefix(avatar.PublicID, "avatars/p1-"), avatar.PublicID)
	assert.True(t, strings.HasSuffix(avatar.PublicID, ".png"), avatar.PublicID)
	assert.Equal(t, "https://cdn.example.com/lms/"+avatar.PublicID, avatar.URL)
}

func TestUploadKeysAreUnique(t *testing.T) {
	p := newProvider(&fakeObjects{}, "lms", "https://cdn")
	a, err := p.Upload(context.Background(), "p1", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	b, err := p.Upload(context.Background(), "p1", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicID, b.PublicID)
}

func TestUploadError(t *testing.T) {
	boom := errors.New("boom")
	p := newProvider(&fakeObjects{err: boom}, "lms", "https://cdn")
	_, err := p.Upload(context.Background(), "p1", []byte("x"), "image/png")
	assert.ErrorIs(t, err, boom)
}

func TestDestroy(t *testing.T) {
	fake := &fakeObjects{}
	p := newProvider(fake, "lms", "https://cdn")

	require.NoError(t, p.Destroy(context.Background(), ""))
	assert.Empty(t, fake.deletes)

	require.NoError(t, p.Destroy(context.Background(), "avatars/p1-abc.png"))
	assert.Equal(t, []string{"avatars/p1-abc.png"}, fake.deletes)
}

func TestNewUsesStaticCredentialsAndPublicURL(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	p, err := New(context.Background(), Config{
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		Bucket:       "lms",
	})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", lo.Region)
	require.NotNil(t, lo.Credentials)
	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minio", creds.AccessKeyID)
	assert.Equal(t, "http://127.0.0.1:9000/lms", p.publicURL)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestDecodeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("img"))

	ct, data, err := DecodeDataURL("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte("img"), data)

	for _, bad := range []string{
		"",
		"image/png;base64," + payload,
		"data:image/png," + payload,
		"data:image/png;base64",
		"data:;base64," + payload,
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	} {
		_, _, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidDataURL, bad)
	}
}
