package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	appconfig "github.com/113rajababu113-wq/eth-options-data-pipeline/config"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/logger"
	"github.com/113rajababu113-wq/eth-options-data-pipeline/models"
)

// S3Store persists snapshot batches as parquet objects in S3. Every append
// writes one immutable, date-partitioned batch object (the append-only
// history) and refreshes a rolling tail object holding the most recent rows,
// which is what the next poll reads its prior index from.
type S3Store struct {
	config    *appconfig.Config
	client    *s3.Client
	bucket    string
	prefix    string
	tailLimit int
	log       *logger.Log
}

// NewS3Store creates an S3Store, configuring the AWS SDK the same way for
// static and ambient credentials.
func NewS3Store(cfg *appconfig.Config) (*S3Store, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_store").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	prefix := cfg.Storage.S3.Prefix
	if prefix == "" {
		prefix = "eth-options"
	}

	store := &S3Store{
		config:    cfg,
		client:    client,
		bucket:    cfg.Storage.S3.Bucket,
		prefix:    prefix,
		tailLimit: cfg.Snapshot.PriorLookback,
		log:       log,
	}

	log.WithComponent("s3_store").WithFields(logger.Fields{
		"bucket":     store.bucket,
		"prefix":     store.prefix,
		"region":     cfg.Storage.S3.Region,
		"path_style": cfg.Storage.S3.PathStyle,
	}).Info("s3 store initialized")

	return store, nil
}

func (s *S3Store) tailKey() string {
	return path.Join(s.prefix, "latest.parquet")
}

func (s *S3Store) batchKey(ts time.Time) string {
	ts = ts.UTC()
	name := fmt.Sprintf("eth_options_%s_%s.parquet", ts.Format("20060102150405"), uuid.New().String()[:8])
	return path.Join(s.prefix, fmt.Sprintf("date=%s", ts.Format("2006-01-02")), name)
}

// ReadRecent returns up to n of the most recently appended rows, oldest
// first. A store that has never been written to yields an empty result, not
// an error.
func (s *S3Store) ReadRecent(ctx context.Context, n int) ([]models.SnapshotRow, error) {
	rows, err := s.getRows(ctx, s.tailKey())
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, err
	}
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return rows, nil
}

// Append persists one batch: an immutable batch object plus a refreshed tail
// object trimmed to the configured lookback. The batch object is the source
// of truth; a stale tail self-heals on the next successful append.
func (s *S3Store) Append(ctx context.Context, rows []models.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}

	data, err := encodeRows(rows, "snappy")
	if err != nil {
		return err
	}

	key := s.batchKey(rows[0].ObservedAt)
	if err := s.putObject(ctx, key, data); err != nil {
		return fmt.Errorf("failed to upload batch to S3 bucket %s: %w", s.bucket, err)
	}

	s.log.WithComponent("s3_store").WithFields(logger.Fields{
		"s3_key":    key,
		"rows":      len(rows),
		"file_size": len(data),
	}).Info("batch uploaded")

	return s.refreshTail(ctx, rows)
}

func (s *S3Store) refreshTail(ctx context.Context, appended []models.SnapshotRow) error {
	tail, err := s.getRows(ctx, s.tailKey())
	if err != nil {
		var noKey *s3types.NoSuchKey
		if !errors.As(err, &noKey) {
			s.log.WithComponent("s3_store").WithError(err).Warn("failed to read tail object, rebuilding from current batch")
		}
		tail = nil
	}

	tail = append(tail, appended...)
	if s.tailLimit > 0 && len(tail) > s.tailLimit {
		tail = tail[len(tail)-s.tailLimit:]
	}

	data, err := encodeRows(tail, "snappy")
	if err != nil {
		return err
	}
	if err := s.putObject(ctx, s.tailKey(), data); err != nil {
		return fmt.Errorf("failed to refresh tail object: %w", err)
	}
	return nil
}

func (s *S3Store) getRows(ctx context.Context, key string) ([]models.SnapshotRow, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	return decodeRows(data)
}

func (s *S3Store) putObject(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"content-type": "parquet",
			"app-version":  s.config.App.Version,
		},
	})
	return err
}
