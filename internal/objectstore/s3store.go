package objectstore

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gravitational/trace"
)

// s3API is the subset of *s3.Client this package depends on, narrowed
// for testability the same way the teacher narrows its Redis client
// dependency to an interface in internal/redisx.
type s3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store lists and streams journal blobs out of a single S3 bucket.
type S3Store struct {
	Bucket string
	client s3API
}

// NewS3Store wraps an already-configured *s3.Client. Credential and
// region resolution belongs to the caller (internal/cli wires this via
// aws-sdk-go-v2/config.LoadDefaultConfig).
func NewS3Store(bucket string, client *s3.Client) *S3Store {
	return &S3Store{Bucket: bucket, client: client}
}

// List returns every object under prefix whose key matches the
// journal naming convention (IsJournalKey), paging through
// ListObjectsV2 as needed.
func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	var token *string
	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, trace.Wrap(err, "listing s3://%s/%s", s.Bucket, prefix)
		}
		for _, obj := range resp.Contents {
			key := aws.ToString(obj.Key)
			if !IsJournalKey(key) {
				continue
			}
			out = append(out, Object{Key: key, Size: aws.ToInt64(obj.Size)})
		}
		if !aws.ToBool(resp.IsTruncated) {
			return out, nil
		}
		token = resp.NextContinuationToken
	}
}

// Open streams key's body directly from S3 without buffering it; the
// returned ReadCloser must be closed by the caller.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, trace.Wrap(err, "opening s3://%s/%s", s.Bucket, key)
	}
	return resp.Body, nil
}
