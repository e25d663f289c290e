package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Storage implements Storage for AWS S3 and S3-compatible services (R2, MinIO)
type S3Storage struct {
	client     *s3.S3
	uploader   *s3manager.Uploader
	bucket     string
	baseURL    string
	publicRead bool
}

func NewS3Storage(cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for S3 storage")
	}

	awsConfig := &aws.Config{
		Region:     aws.String(cfg.Region),
		DisableSSL: aws.Bool(!cfg.UseSSL && cfg.Endpoint != ""),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return newS3Storage(awsConfig, cfg.Bucket, baseURL, cfg.PublicRead)
}

func newS3Storage(awsConfig *aws.Config, bucket, baseURL string, publicRead bool) (*S3Storage, error) {
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Storage{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		bucket:     bucket,
		baseURL:    baseURL,
		publicRead: publicRead,
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        reader,
		ContentType: aws.String(contentType),
	}
	if s.publicRead {
		input.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *S3Storage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return result.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3Storage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

func (s *S3Storage) GetURL(ctx context.Context, path string) (string, error) {
	return joinURL(s.baseURL, path), nil
}

func (s *S3Storage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}

func (s *S3Storage) GetSize(ctx context.Context, path string) (int64, error) {
	result, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isS3NotFound(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get object info: %w", err)
	}
	return aws.Int64Value(result.ContentLength), nil
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aErr awserr.Error
	if errors.As(err, &aErr) {
		switch aErr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// NewCloudflareR2Storage - R2 совместим с S3, используется тот же SDK
func NewCloudflareR2Storage(cfg Config) (*S3Storage, error) {
	// https://<account_id>.r2.cloudflarestorage.com
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
	}

	awsConfig := &aws.Config{
		Region:           aws.String("auto"),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
	}

	// R2 не поддерживает ACL
	return newS3Storage(awsConfig, cfg.Bucket, baseURL, false)
}
