package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"

	"jammal/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Upload is one image file received from the admin product form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageStore persists an uploaded image and returns the URL to store on the product.
type ImageStore interface {
	Store(ctx context.Context, upload Upload) (string, error)
}

// InlineStore embeds images as data URLs. Used when no object store is configured.
type InlineStore struct{}

// Store returns data:<mime>;base64,<payload>.
func (InlineStore) Store(_ context.Context, upload Upload) (string, error) {
	return "data:" + contentType(upload) + ";base64," + base64.StdEncoding.EncodeToString(upload.Data), nil
}

// PutObjectAPI is the subset of the S3 client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the bucket images are written to.
type S3Config struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string // defaults to the bucket's virtual-hosted URL
}

// S3Store uploads images to S3.
type S3Store struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store loads the default AWS configuration for region and creates an S3Store.
func NewS3Store(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg, logger), nil
}

// NewS3StoreWithClient creates an S3Store around an existing client.
func NewS3StoreWithClient(client PutObjectAPI, cfg S3Config, logger zerolog.Logger) *S3Store {
	logger = logger.With().Str("component", "s3-image-store").Logger()

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	logger.Info().Str("bucket", cfg.Bucket).Str("region", cfg.Region).Msg("S3 image store initialised")

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Store uploads the image under <prefix><uuid><ext>. Any failure is an UpstreamFailure.
func (s *S3Store) Store(ctx context.Context, upload Upload) (string, error) {
	key := s.prefix + uuid.New().String() + strings.ToLower(path.Ext(upload.Filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(upload.Data),
		ContentType: aws.String(contentType(upload)),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("failed to upload image")
		return "", models.Upstream(err, "Failed to upload image")
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(upload.Data)).Msg("image uploaded")
	return s.baseURL + "/" + key, nil
}

// contentType trusts the declared type unless it is missing or generic.
func contentType(upload Upload) string {
	if upload.ContentType != "" && upload.ContentType != "application/octet-stream" {
		return upload.ContentType
	}
	return http.DetectContentType(upload.Data)
}
