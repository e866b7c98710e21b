package storage

import (
	"SmartCanteen-Backend/internal/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"

	ErrStorageDisabled = errors.New("object storage is not configured")
)

type (
	AwsS3 interface {
		Enabled() bool
		UploadBytes(ctx context.Context, objectKey string, contentType string, data []byte) (string, error)
		GetPublicLinkKey(objectKey string) string
		DeleteFile(ctx context.Context, objectKey string) error
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}

	disabledS3 struct{}
)

// NewAwsS3 returns a disabled store when AWS_S3_BUCKET is not configured.
func NewAwsS3(ctx context.Context) (AwsS3, error) {
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	if bucket == "" {
		return Disabled(), nil
	}
	region := utils.GetConfig("AWS_S3_REGION")

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	accessKey := utils.GetConfig("AWS_ACCESS_KEY")
	secretKey := utils.GetConfig("AWS_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

func (a *awsS3) Enabled() bool {
	return true
}

func (a *awsS3) UploadBytes(ctx context.Context, objectKey string, contentType string, data []byte) (string, error) {
	objectKey = strings.TrimLeft(objectKey, "/")
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return objectKey, nil
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, objectKey)
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %w", err)
	}
	return nil
}

// Disabled is the store used when no bucket is configured. Every write fails with ErrStorageDisabled.
func Disabled() AwsS3 {
	return disabledS3{}
}

func (disabledS3) Enabled() bool {
	return false
}

func (disabledS3) UploadBytes(context.Context, string, string, []byte) (string, error) {
	return "", ErrStorageDisabled
}

func (disabledS3) GetPublicLinkKey(string) string {
	return ""
}

func (disabledS3) DeleteFile(context.Context, string) error {
	return ErrStorageDisabled
}
