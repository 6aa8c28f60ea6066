package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"xvent/internal/domain"
)

// S3Config holds configuration for the S3 image store.
type S3Config struct {
	Region          string
	Bucket          string
	KeyPrefix       string
	AccessKeyID     string
	SecretAccessKey string
}

type s3Store struct {
	client    *s3.Client
	bucket    string
	region    string
	keyPrefix string
}

// NewS3Store returns an ImageStore that uploads objects to the configured
// S3 bucket under a random UUID key and returns the object's public HTTPS URL.
func NewS3Store(config S3Config) domain.ImageStore {
	awsCfg := aws.Config{
		Region: config.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		),
	}
	return &s3Store{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    config.Bucket,
		region:    config.Region,
		keyPrefix: config.KeyPrefix,
	}
}

func (s *s3Store) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := uuid.NewString() + ".jpg"
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + key
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
