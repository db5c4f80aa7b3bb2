package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/tabliya/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Image is an uploaded file on its way to object storage.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists dish images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, img *Image) (string, error)
}

// S3ImageStore uploads to an S3-compatible bucket (MinIO in development)
// using path-style addressing.
type S3ImageStore struct {
	config *sc.Config
	now    func() time.Time
}

func NewS3ImageStore(cfg *sc.Config) *S3ImageStore {
	return &S3ImageStore{config: cfg, now: time.Now}
}

// storageKey spreads objects by upload date and keeps the file extension.
func (s *S3ImageStore) storageKey(filename string) string {
	d := s.now()
	return fmt.Sprintf("dishes/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(path.Ext(filename)))
}

func (s *S3ImageStore) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *S3ImageStore) Upload(ctx context.Context, img *Image) (string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return "", fmt.Errorf("error configuring s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(img.Filename)
	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   img.Body,
	}
	if img.ContentType != "" {
		in.ContentType = aws.String(img.ContentType)
	}
	if img.Size > 0 {
		in.ContentLength = aws.Int64(img.Size)
	}

	if _, err := putObject(c, ctx, in); err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}
	return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + bucket + "/" + key, nil
}
