package objectstorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bloodline/backend/db"
)

// S3Config holds the credentials and bucket of the S3 object backend. The
// Endpoint is optional and allows S3-compatible services (MinIO).
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// s3Backend stores objects in an S3 bucket. The user and content type are
// kept as object metadata.
type s3Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

const s3UserMetadataKey = "user-id"

func newS3Backend(conf *S3Config) (*s3Backend, error) {
	if conf.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not defined")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.Region),
	}
	if conf.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   conf.Bucket,
	}, nil
}

func (b *s3Backend) GetObject(ctx context.Context, objectID string) (*db.Object, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("cannot get s3 object: %w", err)
	}
	defer func() {
		_ = out.Body.Close()
	}()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read s3 object: %w", err)
	}
	object := &db.Object{
		ID:   objectID,
		Data: data,
	}
	if out.ContentType != nil {
		object.ContentType = *out.ContentType
	}
	if user, ok := out.Metadata[s3UserMetadataKey]; ok {
		object.UserID = user
	}
	if out.LastModified != nil {
		object.CreatedAt = *out.LastModified
	}
	return object, nil
}

func (b *s3Backend) PutObject(ctx context.Context, object *db.Object) error {
	// the uploader splits large avatars into multipart uploads
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(object.ID),
		Body:        bytes.NewReader(object.Data),
		ContentType: aws.String(object.ContentType),
		Metadata:    map[string]string{s3UserMetadataKey: object.UserID},
	})
	if err != nil {
		return fmt.Errorf("cannot put s3 object: %w", err)
	}
	return nil
}
