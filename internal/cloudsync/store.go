package cloudsync

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/opensensor/stationd/internal/config"
	"github.com/opensensor/stationd/internal/errors"
	"github.com/opensensor/stationd/internal/logger"
)

// ObjectInfo is the remote metadata used for incremental comparison.
// ETag is the store's content digest; for single-part uploads it is the
// quoted MD5 of the object body.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// ObjectStore is the capability set the sync engine needs from a
// storage backend: enumerate objects with metadata and write bytes.
type ObjectStore interface {
	List(ctx context.Context) ([]ObjectInfo, error)
	Put(ctx context.Context, key string, body []byte) error
}

// providers maps the supported provider names to whether they require
// path-style addressing. All are S3-compatible; they differ only in
// endpoint and addressing conventions.
var providers = map[string]bool{
	"s3":        false,
	"r2":        true,
	"minio":     true,
	"wasabi":    false,
	"backblaze": false,
	"hetzner":   false,
}

// NewStore builds the object store selected by the storage
// configuration. Provider selection happens exactly once, here.
func NewStore(cfg config.Storage) (ObjectStore, error) {
	errFactory := errors.New()

	pathStyle, ok := providers[strings.ToLower(cfg.Provider)]
	if !ok {
		return nil, errFactory.WithData(errors.ErrInvalidProvider, cfg.Provider)
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if pathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitStore, err)
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("bucket", cfg.Bucket).
		Str("prefix", cfg.Prefix).
		Msg("Object store initialized")

	return &s3Store{
		svc:    s3.New(sess),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

type s3Store struct {
	svc    *s3.S3
	bucket string
	prefix string
}

// List enumerates every object under the configured prefix. Returned
// keys are relative to the prefix so they compare directly against
// local relative paths.
func (s *s3Store) List(ctx context.Context) ([]ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	var objects []ObjectInfo
	err := s.svc.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, obj := range page.Contents {
				objects = append(objects, ObjectInfo{
					Key:  s.relativeKey(aws.StringValue(obj.Key)),
					Size: aws.Int64Value(obj.Size),
					ETag: aws.StringValue(obj.ETag),
				})
			}
			return true
		})
	if err != nil {
		return nil, err
	}

	return objects, nil
}

func (s *s3Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.remoteKey(key)),
		Body:   bytes.NewReader(body),
	})

	return err
}

func (s *s3Store) relativeKey(key string) string {
	if s.prefix == "" {
		return key
	}

	return strings.TrimPrefix(key, s.prefix+"/")
}

func (s *s3Store) remoteKey(key string) string {
	if s.prefix == "" {
		return key
	}

	return s.prefix + "/" + key
}
