package objectstore

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Bucket is the blob-store surface the client needs. Make must treat an
// already existing bucket as success.
type Bucket interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Make(ctx context.Context) error
	PutFile(ctx context.Context, key, localPath string) error
	GetFile(ctx context.Context, key, localPath string) error
}

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type minioBucket struct {
	client *minio.Client
	name   string
	region string
}

func NewMinioBucket(opts MinioOptions) (Bucket, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client for %s: %w", opts.Endpoint, err)
	}

	return &minioBucket{
		client: client,
		name:   opts.Bucket,
		region: opts.Region,
	}, nil
}

func (b *minioBucket) Name() string {
	return b.name
}

func (b *minioBucket) Exists(ctx context.Context) (bool, error) {
	return b.client.BucketExists(ctx, b.name)
}

func (b *minioBucket) Make(ctx context.Context) error {
	err := b.client.MakeBucket(ctx, b.name, minio.MakeBucketOptions{Region: b.region})
	if err != nil && !isAlreadyExists(err) {
		return err
	}
	return nil
}

func (b *minioBucket) PutFile(ctx context.Context, key, localPath string) error {
	_, err := b.client.FPutObject(ctx, b.name, key, localPath, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (b *minioBucket) GetFile(ctx context.Context, key, localPath string) error {
	return b.client.FGetObject(ctx, b.name, key, localPath, minio.GetObjectOptions{})
}

func isAlreadyExists(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return true
	default:
		return false
	}
}
