package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/internal"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	avatarFolder     = "avatars"
	objectSuffixSize = 8
)

// Config describes the bucket avatars live in. PublicURL is the prefix used
// to build the public avatar URL; it defaults to BaseEndpoint/Bucket.
type Config struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Bucket       string
	PublicURL    string
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Provider uploads avatars under avatars/ in a single bucket.
type S3Provider struct {
	client    objectAPI
	bucket    string
	publicURL string
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// New builds an S3 client from cfg. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg Config) (*S3Provider, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.BaseEndpoint, "/") + "/" + cfg.Bucket
	}
	return newProvider(client, cfg.Bucket, publicURL), nil
}

func newProvider(client objectAPI, bucket, publicURL string) *S3Provider {
	return &S3Provider{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload stores image under a fresh key and returns its reference.
func (p *S3Provider) Upload(ctx context.Context, principalID string, image []byte, contentType string) (lmsAuth.Avatar, error) {
	suffix, err := internal.NewObjectSuffix(objectSuffixSize)
	if err != nil {
		return lmsAuth.Avatar{}, fmt.Errorf("media: object key: %w", err)
	}
	key := fmt.Sprintf("%s/%s-%s%s", avatarFolder, principalID, suffix, extensionFor(contentType))

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(image),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(image))),
	})
	if err != nil {
		return lmsAuth.Avatar{}, fmt.Errorf("media: upload avatar: %w", err)
	}
	return lmsAuth.Avatar{PublicID: key, URL: p.publicURL + "/" + key}, nil
}

// Destroy removes the object behind publicID. An empty id is a no-op.
func (p *S3Provider) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("media: delete avatar: %w", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

var _ lmsAuth.MediaProvider = (*S3Provider)(nil)
