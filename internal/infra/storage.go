package infra

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ReceiptStore publishes a rendered receipt file and returns its location.
type ReceiptStore interface {
	Put(ctx context.Context, kind, localPath string) (string, error)
}

// LocalStore leaves receipts where the renderer wrote them.
type LocalStore struct{}

func (LocalStore) Put(_ context.Context, _ string, localPath string) (string, error) {
	return localPath, nil
}

// MinioConfig mirrors the MINIO_* settings.
type MinioConfig struct {
	URL       string
	AccessKey string
	SecretKey string
	Secure    bool
	Bucket    string
	Location  string
}

// MinioStore uploads receipts to a bucket under <kind>/<file name>.
type MinioStore struct {
	client *minio.Client
	bucket string
	cb     *CircuitBreaker
}

func NewMinioStore(ctx context.Context, cfg MinioConfig, cb *CircuitBreaker) (*MinioStore, error) {
	endpoint := strings.TrimPrefix(cfg.URL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: init client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("minio: bucket created")
	}

	if cb == nil {
		cb = NewCircuitBreaker(CircuitBreakerConfig{Name: "minio"})
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, cb: cb}, nil
}

func (s *MinioStore) Put(ctx context.Context, kind, localPath string) (string, error) {
	object := path.Join(kind, filepath.Base(localPath))
	err := s.cb.Execute(func() error {
		_, err := s.client.FPutObject(ctx, s.bucket, object, localPath,
			minio.PutObjectOptions{ContentType: "application/pdf"})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("minio: upload %s: %w", object, err)
	}
	return "s3://" + s.bucket + "/" + object, nil
}
