package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"holiday-backend/internal/shared/storage/object"
)

const createdAtMetaKey = "created-at"

// Options configures the S3 backend.
type Options struct {
	Region   string
	Bucket   string
	Prefix   string
	Endpoint string
	KMSKeyID string
}

// Store implements object.Store using Amazon S3. PutObject is atomic, so a
// partially uploaded object is never visible.
type Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates a new S3-backed object store. A non-empty Endpoint switches to
// path-style addressing for S3-compatible servers.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithConfig(cfg, opts), nil
}

// NewWithConfig builds the store from an existing aws.Config.
func NewWithConfig(cfg aws.Config, opts Options) *Store {
	endpoint := strings.TrimSpace(opts.Endpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &Store{
		client:   client,
		presign:  s3.NewPresignClient(client),
		bucket:   opts.Bucket,
		prefix:   normalizePrefix(opts.Prefix),
		kmsKeyID: strings.TrimSpace(opts.KMSKeyID),
	}
}

// Put uploads the object with its creation time in user metadata.
func (s *Store) Put(ctx context.Context, kind object.Kind, name string, r io.Reader, createdAt time.Time) (object.Info, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return object.Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Info{}, err
	}

	// Buffer so the SDK can compute checksums over a seekable body.
	data, err := io.ReadAll(r)
	if err != nil {
		return object.Info{}, fmt.Errorf("read body: %w", err)
	}

	key := s.objectKey(kind, name)
	contentType := object.ContentTypeFor(name)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{createdAtMetaKey: formatCreatedAt(createdAt)},
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return object.Info{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}

	return object.Info{
		Kind:        kind,
		Name:        name,
		SizeBytes:   int64(len(data)),
		ContentType: contentType,
		CreatedAt:   createdAt,
	}, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, kind object.Kind, name string) (io.ReadCloser, object.Info, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return nil, object.Info{}, err
	}

	key := s.objectKey(kind, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, object.Info{}, object.ErrNotFound
		}
		return nil, object.Info{}, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, key, err)
	}

	info := object.Info{
		Kind:        kind,
		Name:        name,
		SizeBytes:   aws.ToInt64(out.ContentLength),
		ContentType: object.ContentTypeFor(name),
		CreatedAt:   createdAtFrom(out.Metadata, out.LastModified),
	}
	return out.Body, info, nil
}

// Stat issues a HeadObject.
func (s *Store) Stat(ctx context.Context, kind object.Kind, name string) (object.Info, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return object.Info{}, err
	}

	key := s.objectKey(kind, name)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return object.Info{}, object.ErrNotFound
		}
		return object.Info{}, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return object.Info{
		Kind:        kind,
		Name:        name,
		SizeBytes:   aws.ToInt64(out.ContentLength),
		ContentType: object.ContentTypeFor(name),
		CreatedAt:   createdAtFrom(out.Metadata, out.LastModified),
	}, nil
}

// Delete removes the object. S3 deletes are idempotent, so existence is
// checked first to report ErrNotFound.
func (s *Store) Delete(ctx context.Context, kind object.Kind, name string) error {
	if _, err := s.Stat(ctx, kind, name); err != nil {
		return err
	}

	key := s.objectKey(kind, name)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

// List pages through the kind's prefix. Timestamps come from LastModified.
func (s *Store) List(ctx context.Context, kind object.Kind) ([]object.Info, error) {
	if !kind.Valid() {
		return nil, object.ErrInvalidKey
	}

	listPrefix := applyPrefix(s.prefix, kind.Dir()) + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(listPrefix),
	})

	out := []object.Info{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s prefix=%s: %w", s.bucket, listPrefix, err)
		}
		for _, obj := range page.Contents {
			name, ok := nameFromKey(listPrefix, aws.ToString(obj.Key))
			if !ok {
				continue
			}
			out = append(out, object.Info{
				Kind:        kind,
				Name:        name,
				SizeBytes:   aws.ToInt64(obj.Size),
				ContentType: object.ContentTypeFor(name),
				CreatedAt:   aws.ToTime(obj.LastModified).UTC(),
			})
		}
	}
	return out, nil
}

// PresignGet returns a URL that downloads the object without credentials
// until ttl elapses.
func (s *Store) PresignGet(ctx context.Context, kind object.Kind, name, disposition string, ttl time.Duration) (string, error) {
	if err := object.CheckKey(kind, name); err != nil {
		return "", err
	}
	out, err := s.presign.PresignGetObject(ctx, presignGetInput(s.bucket, s.objectKey(kind, name), disposition), func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("s3 presign get bucket=%s name=%s: %w", s.bucket, name, err)
	}
	return out.URL, nil
}

func presignGetInput(bucket, key, disposition string) *s3.GetObjectInput {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if disposition != "" {
		input.ResponseContentDisposition = aws.String(disposition)
	}
	return input
}

func (s *Store) objectKey(kind object.Kind, name string) string {
	return applyPrefix(s.prefix, kind.Dir()+"/"+name)
}

func nameFromKey(listPrefix, key string) (string, bool) {
	name := strings.TrimPrefix(key, listPrefix)
	if name == key || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func createdAtFrom(meta map[string]string, lastModified *time.Time) time.Time {
	if raw, ok := meta[createdAtMetaKey]; ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t.UTC()
		}
	}
	return aws.ToTime(lastModified).UTC()
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var (
	_ object.Store     = (*Store)(nil)
	_ object.Presigner = (*Store)(nil)
)
