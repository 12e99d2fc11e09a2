package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/models"
	"google.golang.org/api/option"
)

var ErrUploadsDisabled = errors.New("file uploads are not configured")

// ObjectStore is a bucket holding publicly readable objects.
type ObjectStore interface {
	Put(ctx context.Context, objectName, contentType string, body io.Reader) (publicURL string, err error)
	Delete(ctx context.Context, objectName string) error
}

// NewObjectStore picks the backend named by cfg.Driver. An empty driver
// disables uploads and returns a nil store.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "r2":
		return NewR2Store(ctx, cfg)
	case "gcs":
		return NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// R2Store talks to Cloudflare R2 through its S3 compatible API.
type R2Store struct {
	client       *s3.Client
	bucket       string
	publicDomain string
}

func NewR2Store(ctx context.Context, cfg config.StorageConfig) (*R2Store, error) {
	if cfg.R2Bucket == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretKey == "" || cfg.R2Endpoint == "" {
		return nil, fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Store{
		client:       client,
		bucket:       cfg.R2Bucket,
		publicDomain: strings.TrimRight(cfg.R2PublicDomain, "/"),
	}, nil
}

func (s *R2Store) Put(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(objectName),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicDomain, s.bucket, objectName), nil
}

func (s *R2Store) Delete(ctx context.Context, objectName string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	if cfg.GCSBucket == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET")
	}
	var opts []option.ClientOption
	if cfg.GCSCredentials != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.GCSCredentials))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.GCSBucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload close: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

func (s *GCSStore) Delete(ctx context.Context, objectName string) error {
	if err := s.client.Bucket(s.bucket).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

// AvatarUploader validates and stores profile pictures.
type AvatarUploader struct {
	store     ObjectStore
	validator *FileValidator
	logger    *slog.Logger
}

// NewAvatarUploader accepts a nil store; uploads then fail with ErrUploadsDisabled.
func NewAvatarUploader(store ObjectStore, validator *FileValidator, logger *slog.Logger) *AvatarUploader {
	return &AvatarUploader{store: store, validator: validator, logger: logger}
}

func (u *AvatarUploader) Enabled() bool {
	return u != nil && u.store != nil
}

func (u *AvatarUploader) Upload(ctx context.Context, ownerName string, fh *multipart.FileHeader) (*models.Avatar, error) {
	if !u.Enabled() {
		return nil, ErrUploadsDisabled
	}
	contentType, err := u.validator.ValidateFile(fh)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	slug := GenerateSlug(ownerName)
	if slug == "" {
		slug = "user"
	}
	objectName := fmt.Sprintf("avatars/%s-%s%s", slug, uuid.New().String(), ext)

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	url, err := u.store.Put(ctx, objectName, contentType, f)
	if err != nil {
		return nil, err
	}
	return &models.Avatar{ObjectName: objectName, URL: url}, nil
}

// Remove deletes the stored object. Failures are only logged.
func (u *AvatarUploader) Remove(ctx context.Context, avatar *models.Avatar) {
	if !u.Enabled() || avatar == nil || avatar.ObjectName == "" {
		return
	}
	if err := u.store.Delete(ctx, avatar.ObjectName); err != nil {
		u.logger.Warn("avatar delete failed", slog.String("object", avatar.ObjectName), slog.Any("error", err))
	}
}
