package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
	"github.com/portfolio-site/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

// MaxImageSize is the largest decoded project image accepted
const MaxImageSize = 5 * 1024 * 1024

var (
	ErrInvalidImageType = errors.New("invalid image type")
	ErrImageTooLarge    = errors.New("image too large")
	ErrInvalidImageData = errors.New("invalid image data")
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ObjectAPI is the subset of the S3 client used here
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures an S3-compatible bucket
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string // empty means AWS S3
	Region          string
	PublicBaseURL   string // overrides the derived public URL, e.g. a CDN
}

// Client uploads project images to S3-compatible object storage
type Client struct {
	api           ObjectAPI
	bucketName    string
	publicBaseURL string
}

// NewClient creates a storage client using the S3 SDK
func NewClient(opts Options) *Client {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	s3Opts := s3.Options{
		Region: opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		),
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3Opts.UsePathStyle = true
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", opts.BucketName),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return NewClientWithAPI(s3.New(s3Opts), opts.BucketName, publicBaseURL(opts))
}

// NewClientWithAPI wires a client around an existing ObjectAPI
func NewClientWithAPI(api ObjectAPI, bucketName, publicBaseURL string) *Client {
	return &Client{
		api:           api,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func publicBaseURL(opts Options) string {
	switch {
	case opts.PublicBaseURL != "":
		return opts.PublicBaseURL
	case opts.Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimRight(opts.Endpoint, "/"), opts.BucketName)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.BucketName, opts.Region)
	}
}

// ProjectImageKey builds the object key for a project image
func ProjectImageKey(projectID, contentType string, now time.Time) string {
	ext := allowedTypes[strings.ToLower(contentType)]
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("projects/%s/%d.%s", projectID, now.Unix(), ext)
}

// PublicURL returns the public URL of key
func (c *Client) PublicURL(key string) string {
	return c.publicBaseURL + "/" + key
}

// UploadImage uploads base64 image data (plain or data URI) and returns its public URL
func (c *Client) UploadImage(ctx context.Context, imageData, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadImage"

	imageBytes, err := DecodeImage(imageData)
	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(metrics.MeasureDuration(start))
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", err
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(c.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(imageBytes),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(imageBytes)),
	)

	return c.PublicURL(key), nil
}

// DeleteImage removes an object; missing objects are not an error on S3
func (c *Client) DeleteImage(ctx context.Context, key string) error {
	start := time.Now()
	operation := "deleteImage"

	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	duration := metrics.MeasureDuration(start)
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()
	logger.LogAPICall(ctx, "object_storage", operation, status, duration, zap.String("key", key))

	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// KeyFromURL returns the object key for a URL this client produced
func (c *Client) KeyFromURL(imageURL string) (string, bool) {
	prefix := c.publicBaseURL + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(imageURL, prefix), true
}

// ValidateImageType validates the image content type
func ValidateImageType(contentType string) error {
	if _, ok := allowedTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("%w: %s. Allowed types: jpeg, jpg, png, webp", ErrInvalidImageType, contentType)
	}
	return nil
}

// ValidateImageSize validates the decoded image size
func ValidateImageSize(imageData string) error {
	imageBytes, err := DecodeImage(imageData)
	if err != nil {
		return err
	}
	if len(imageBytes) > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d bytes)", ErrImageTooLarge, len(imageBytes), MaxImageSize)
	}
	return nil
}

// DecodeImage decodes plain base64 or a base64 data URI
func DecodeImage(imageData string) ([]byte, error) {
	payload := imageData
	if strings.HasPrefix(imageData, "data:") {
		parts := strings.SplitN(imageData, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: invalid data URI format", ErrInvalidImageData)
		}
		payload = parts[1]
	}

	imageBytes, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImageData)
	}
	return imageBytes, nil
}
