package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/harborfs/file-manager/internal/models"
)

// Minio is the remote object-store variant. It implements the optional
// Locator and Downloader capabilities on top of the core Backend contract.
type Minio struct {
	client     *minio.Client
	bucketName string
	presignTTL time.Duration
}

// NewMinio connects to the object store and creates the bucket if it does
// not exist.
func NewMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Minio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("[MinIO] created bucket: %s", bucket)
	}

	log.Println("[MinIO] connected")
	return &Minio{
		client:     client,
		bucketName: bucket,
		presignTTL: 15 * time.Minute,
	}, nil
}

func (m *Minio) Kind() models.StorageType { return models.StorageRemote }

func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *Minio) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; surface missing objects here.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

func (m *Minio) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Locate returns a presigned GET URL that downloads the blob under its
// original filename.
func (m *Minio) Locate(ctx context.Context, key, filename string) (string, error) {
	params := make(url.Values)
	if filename != "" {
		params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucketName, key, m.presignTTL, params)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}

// Download fetches the whole blob into memory.
func (m *Minio) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// CheckConnection is used by health checks.
func (m *Minio) CheckConnection(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucketName)
	return err
}
