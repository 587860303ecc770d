// Package backup uploads snapshots of the workout document to S3-compatible storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/example/workoutbot/internal/config"
	"github.com/example/workoutbot/internal/store"
)

// ObjectPutter is the part of the S3 client the uploader needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes the whole document as one JSON object per run
type Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Client builds a client for cfg. A custom endpoint (MinIO and the
// like) switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg config.BackupConfig) (*s3.Client, error) {
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %v", err)
	}

	client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Printf("S3 backups initialized for endpoint: %q, bucket: %s", cfg.Endpoint, cfg.Bucket)
	return client, nil
}

// NewUploader creates an uploader writing under prefix in bucket
func NewUploader(client ObjectPutter, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Key returns the object key for a snapshot taken at t
func (u *Uploader) Key(t time.Time) string {
	return path.Join(u.prefix, t.UTC().Format("2006/01/02"), "workouts-"+t.UTC().Format("20060102T150405Z")+".json")
}

// Upload snapshots st and stores it, returning the object key
func (u *Uploader) Upload(ctx context.Context, st store.Store) (string, error) {
	doc, err := st.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %v", err)
	}

	key := u.Key(u.now())
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %v", err)
	}

	log.Printf("Uploaded backup of %d users to s3://%s/%s", len(doc.Users), u.bucket, key)
	return key, nil
}
