package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// S3Config holds the configuration for S3 uploads.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for S3-compatible services
	AccessKeyID     string // Optional: falls back to the default credential chain
	SecretAccessKey string
}

// S3Uploader copies finished output files to S3.
type S3Uploader struct {
	client *s3.Client
	region string
	logger logrus.FieldLogger
}

// NewS3Uploader creates an uploader from cfg.
// Static credentials are used when both keys are set; otherwise the SDK's
// default chain (environment, shared config, instance role) applies.
func NewS3Uploader(ctx context.Context, cfg S3Config, logger logrus.FieldLogger) (*S3Uploader, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var configOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		configOpts = append(configOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Uploader{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		region: awsCfg.Region,
		logger: logger,
	}, nil
}

// Upload stores the file at localPath under dst and returns its object URL.
func (u *S3Uploader) Upload(ctx context.Context, localPath string, dst Destination) (string, error) {
	if dst.Bucket == "" {
		return "", ErrMissingBucket
	}

	f, err := os.Open(localPath) // #nosec G304 -- localPath is the output we just wrote
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	key := dst.ObjectKey(localPath)
	input := &s3.PutObjectInput{
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", dst.Bucket, u.region, key)
	u.logger.WithFields(logrus.Fields{
		"bucket": dst.Bucket,
		"key":    key,
	}).Info("uploaded output")
	return url, nil
}
