package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appconfig "soulcare/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignedUpload is what a browser needs to PUT an object directly.
type PresignedUpload struct {
	URL       string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers"`
	ObjectURL string            `json:"avatarUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type objectPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client presigns uploads into one bucket.
type Client struct {
	cfg     appconfig.StorageConfig
	presign objectPresigner
	now     func() time.Time
}

func NewClient(ctx context.Context, cfg appconfig.StorageConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("s3 region and bucket are required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		cfg:     cfg,
		presign: s3.NewPresignClient(s3Client),
		now:     time.Now,
	}, nil
}

// PresignPut returns a time limited PUT URL for key.
func (c *Client) PresignPut(ctx context.Context, key, contentType string) (*PresignedUpload, error) {
	if key == "" {
		return nil, errors.New("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	presigned, err := c.presign.PresignPutObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = c.cfg.PresignTTL
	})
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}

	return &PresignedUpload{
		URL:       presigned.URL,
		Headers:   map[string]string{"Content-Type": contentType},
		ObjectURL: c.ObjectURL(key),
		ExpiresAt: c.now().Add(c.cfg.PresignTTL),
	}, nil
}

// ObjectURL is the public address of key once uploaded.
func (c *Client) ObjectURL(key string) string {
	if c.cfg.PublicBase != "" {
		return c.cfg.PublicBase + "/" + key
	}
	if c.cfg.Endpoint != "" {
		return strings.TrimRight(c.cfg.Endpoint, "/") + "/" + c.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.cfg.Bucket, c.cfg.Region, key)
}
