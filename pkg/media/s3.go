package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectAPI is the part of the S3 client used by S3Host.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Host stores images in an S3-compatible bucket (AWS, R2, MinIO).
type S3Host struct {
	client  ObjectAPI
	bucket  string
	baseURL string
}

func NewS3Host(ctx context.Context, opts S3Options) (*S3Host, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = endpoint + "/" + opts.Bucket
	}
	return NewS3HostWithClient(client, opts.Bucket, baseURL), nil
}

func NewS3HostWithClient(client ObjectAPI, bucket, publicBaseURL string) *S3Host {
	return &S3Host{client: client, bucket: bucket, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload stores img under folder/<uuid><ext>. img must have passed Validate.
func (h *S3Host) Upload(ctx context.Context, folder string, img *Image) (string, error) {
	if img.contentType == "" {
		if err := Validate(img); err != nil {
			return "", err
		}
	}
	key := folder + "/" + uuid.NewString() + extension(img.contentType)
	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.contentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return h.baseURL + "/" + key, nil
}

// Delete removes the object behind url. URLs outside the public base return ErrForeignURL.
func (h *S3Host) Delete(ctx context.Context, url string) error {
	key, ok := h.KeyFor(url)
	if !ok {
		return ErrForeignURL
	}
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (h *S3Host) KeyFor(url string) (string, bool) {
	prefix := h.baseURL + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
