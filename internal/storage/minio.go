package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jobai-go/internal/config"
	"jobai-go/internal/constants"
	"jobai-go/internal/logger"
	"jobai-go/internal/tracing"
)

var minioTracer = otel.Tracer("jobai-go/storage/minio")

// ResumeObjectKey is where the uploaded PDF of a submission lives.
func ResumeObjectKey(submissionUUID, fileExt string) string {
	if fileExt == "" {
		fileExt = ".pdf"
	}
	return fmt.Sprintf("resume/%s/original%s", submissionUUID, strings.ToLower(fileExt))
}

// ResultObjectKey is where the extraction JSON of a submission lives.
func ResultObjectKey(submissionUUID string) string {
	return fmt.Sprintf("resume/%s/extraction.json", submissionUUID)
}

// MinIO stores original PDFs and extraction results in two buckets.
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	resultsBucket  string
	logger         zerolog.Logger
}

// NewMinIO creates the client, ensures both buckets exist and applies expiry rules.
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO config must not be nil")
	}
	l := logger.Logger.With().Str("component", "minio").Logger()

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: cfg.OriginalsBucket,
		resultsBucket:  cfg.ResultsBucket,
		logger:         l,
	}

	for _, bucket := range []string{m.originalBucket, m.resultsBucket} {
		if err := m.ensureBucketExists(ctx, bucket, cfg.Location); err != nil {
			return nil, err
		}
	}

	if err := m.setupLifecycleRules(ctx); err != nil {
		// Expiry is housekeeping; uploads still work without it.
		l.Warn().Err(err).Msg("failed to set MinIO lifecycle rules")
	}

	l.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO client initialized")
	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	m.logger.Info().Str("bucket", bucketName).Msg("bucket created")
	return nil
}

func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", m.cfg.OriginalFileExpireDays); err != nil {
			return fmt.Errorf("lifecycle for bucket %s: %w", m.originalBucket, err)
		}
	}
	if m.cfg.ResultExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.resultsBucket, "expire-results", m.cfg.ResultExpireDays); err != nil {
			return fmt.Errorf("lifecycle for bucket %s: %w", m.resultsBucket, err)
		}
	}
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, cfg)
}

func (m *MinIO) put(ctx context.Context, bucket, objectKey string, data []byte, contentType string) error {
	ctx, span := minioTracer.Start(ctx, "MinIO.PutObject",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("minio.bucket", bucket),
			attribute.String("minio.object_key", tracing.SafeObjectKey(objectKey)),
			attribute.Int("minio.size", len(data)),
		))
	defer span.End()

	_, err := m.client.PutObject(ctx, bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, objectKey, err)
	}
	return nil
}

// UploadResumeFile stores the original PDF and returns its object key.
func (m *MinIO) UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, data []byte) (string, error) {
	key := ResumeObjectKey(submissionUUID, fileExt)
	if err := m.put(ctx, m.originalBucket, key, data, constants.ContentTypePDF); err != nil {
		return "", err
	}
	return key, nil
}

// UploadResultJSON stores the extraction result and returns its object key.
func (m *MinIO) UploadResultJSON(ctx context.Context, submissionUUID string, data []byte) (string, error) {
	key := ResultObjectKey(submissionUUID)
	if err := m.put(ctx, m.resultsBucket, key, data, constants.ContentTypeJSON); err != nil {
		return "", err
	}
	return key, nil
}

// DownloadFile reads an object from the originals bucket.
func (m *MinIO) DownloadFile(ctx context.Context, objectKey string) ([]byte, error) {
	ctx, span := minioTracer.Start(ctx, "MinIO.GetObject",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("minio.bucket", m.originalBucket),
			attribute.String("minio.object_key", tracing.SafeObjectKey(objectKey)),
		))
	defer span.End()

	obj, err := m.client.GetObject(ctx, m.originalBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("failed to get object %s: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("failed to read object %s: %w", objectKey, err)
	}
	return data, nil
}

// Ping checks that the originals bucket is reachable.
func (m *MinIO) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.originalBucket)
	return err
}
