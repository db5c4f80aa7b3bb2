package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/tabliya/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s3TestConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

func TestStorageKey(t *testing.T) {
	s := NewS3ImageStore(s3TestConfig())
	s.now = func() time.Time { return time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC) }

	key := s.storageKey("Photo.JPG")
	re := regexp.MustCompile(`^dishes/2025/4/9/[0-9a-f-]{36}\.jpg$`)
	assert.Regexp(t, re, key)

	assert.Regexp(t, `^dishes/2025/4/9/[0-9a-f-]{36}$`, s.storageKey("noext"))
}

func TestUpload_PutsObjectAndReturnsURL(t *testing.T) {
	origPut := putObject
	defer func() { putObject = origPut }()

	var got *s3.PutObjectInput
	var opts s3.Options
	origNew := newS3ClientFromConfig
	defer func() { newS3ClientFromConfig = origNew }()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return origNew(cfg, optFns...)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		return &s3.PutObjectOutput{}, nil
	}

	s := NewS3ImageStore(s3TestConfig())
	url, err := s.Upload(context.Background(), &Image{
		Filename: "soup.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png"),
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "tabliya", aws.ToString(got.Bucket))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(got.ContentLength))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.Equal(t, "http://127.0.0.1:9000/tabliya/"+aws.ToString(got.Key), url)
}

func TestUpload_Errors(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = origLoad }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	s := NewS3ImageStore(s3TestConfig())
	_, err := s.Upload(context.Background(), &Image{Filename: "a.png", Body: strings.NewReader("x")})
	assert.ErrorContains(t, err, "no config")

	loadDefaultAWSConfig = origLoad
	origPut := putObject
	defer func() { putObject = origPut }()
	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("access denied")
	}
	_, err = s.Upload(context.Background(), &Image{Filename: "a.png", Body: strings.NewReader("x")})
	assert.ErrorContains(t, err, "error uploading image")
}
