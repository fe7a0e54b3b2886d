package services

import (
	"context"
	"fmt"
	"time"

	appconfig "couply-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLTTL = 5 * time.Minute

// MediaService issues pre-signed S3 upload URLs for post, message and
// profile media
type MediaService struct {
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewMediaService creates a new media service
func NewMediaService(cfg appconfig.AWSConfig) (*MediaService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &MediaService{
		s3Client: s3Client,
		bucket:   cfg.S3Bucket,
		region:   cfg.Region,
	}, nil
}

// UploadResponse carries a pre-signed upload URL and the public URL the
// object will have once uploaded
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	MediaURL  string `json:"media_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GetUploadURL generates a pre-signed PUT URL scoped under the couple's
// media prefix
func (s *MediaService) GetUploadURL(ctx context.Context, coupleID, contentType string) (*UploadResponse, error) {
	key := fmt.Sprintf("couples/%s/%s", coupleID, uuid.New().String())

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	mediaURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)

	return &UploadResponse{
		UploadURL: request.URL,
		MediaURL:  mediaURL,
		ExpiresIn: int(uploadURLTTL.Seconds()),
	}, nil
}
