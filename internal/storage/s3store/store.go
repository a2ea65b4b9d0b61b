// Package s3store stores supporting documents in an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
)

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store keeps objects under <prefix>/<yyyy>/<mm>/<ulid><ext>.
type Store struct {
	client API
	bucket string
	prefix string
	now    func() time.Time
}

var _ portsrepo.DocumentStore = (*Store)(nil)

// New wraps an existing client.
func New(client API, bucket, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
	}
}

// LoadClient builds an S3 client. A non-empty endpoint (for example LocalStack or MinIO)
// overrides AWS resolution and switches to path-style addressing.
func LoadClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				HostnameImmutable: true,
				PartitionID:       "aws",
			}, nil
		})
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	}), nil
}

func (s *Store) key(originalName string) string {
	now := s.now().UTC()
	name := ulid.Make().String() + strings.ToLower(filepath.Ext(originalName))
	k := path.Join(fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), name)
	if s.prefix != "" {
		k = s.prefix + "/" + k
	}
	return k
}

// Save buffers the upload so the size limit and content type are known before the PUT.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string, maxBytes int64) (portsrepo.StoredObject, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return portsrepo.StoredObject{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return portsrepo.StoredObject{}, fmt.Errorf("%w: %q exceeds the %d byte limit", apperrors.ErrFileRejected, filepath.Base(originalName), maxBytes)
	}
	if len(data) == 0 {
		return portsrepo.StoredObject{}, fmt.Errorf("%w: %q is empty", apperrors.ErrFileRejected, filepath.Base(originalName))
	}

	contentType := mimetype.Detect(data).String()
	key := s.key(originalName)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return portsrepo.StoredObject{}, fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return portsrepo.StoredObject{Reference: key, ContentType: contentType, SizeBytes: int64(len(data))}, nil
}

func (s *Store) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(reference),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: document %q", apperrors.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", reference, err)
	}
	return out.Body, nil
}

// Delete relies on S3 treating a missing key as a successful delete.
func (s *Store) Delete(ctx context.Context, reference string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(reference),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", reference, err)
	}
	return nil
}
