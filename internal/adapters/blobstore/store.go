// Package blobstore implements ports.EvidenceStore over a gocloud.dev bucket.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// Store reads job evidence stored as <jobID>/<name>.
type Store struct {
	bucket       *blob.Bucket
	fetchTimeout time.Duration
	maxBytes     int64
}

// Open opens the bucket at bucketURL (file:///srv/jobs, s3://bucket, mem://).
func Open(ctx context.Context, bucketURL string, fetchTimeout time.Duration, maxBytes int64) (*Store, error) {
	b, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open evidence bucket: %w", err)
	}
	return New(b, fetchTimeout, maxBytes), nil
}

// New wraps an already opened bucket.
func New(b *blob.Bucket, fetchTimeout time.Duration, maxBytes int64) *Store {
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}
	return &Store{bucket: b, fetchTimeout: fetchTimeout, maxBytes: maxBytes}
}

// Key returns the object key for a job's evidence file.
func Key(jobID, name string) string {
	return jobID + "/" + name
}

// Fetch reads one evidence file. Missing objects and per-fetch timeouts are
// reported as domain.ErrAbsentSource; oversized objects as
// domain.ErrMalformedSource.
func (s *Store) Fetch(ctx context.Context, jobID, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	key := Key(jobID, name)
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, s.classify(key, err)
	}
	defer r.Close()

	if r.Size() > s.maxBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit %d: %w", key, r.Size(), s.maxBytes, domain.ErrMalformedSource)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, s.classify(key, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%s: exceeds limit %d: %w", key, s.maxBytes, domain.ErrMalformedSource)
	}
	return data, nil
}

// Put writes an evidence file. Used by tooling and tests.
func (s *Store) Put(ctx context.Context, jobID, name string, data []byte) error {
	return s.bucket.WriteAll(ctx, Key(jobID, name), data, nil)
}

// Ping checks the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.bucket.IsAccessible(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("evidence bucket not accessible")
	}
	return nil
}

// Close releases the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// classify maps every read failure to an absent source; only unexpected
// failures keep their cause in the message.
func (s *Store) classify(key string, err error) error {
	switch gcerrors.Code(err) {
	case gcerrors.NotFound, gcerrors.DeadlineExceeded, gcerrors.Canceled:
		return fmt.Errorf("%s: %w", key, domain.ErrAbsentSource)
	}
	return fmt.Errorf("%s: %v: %w", key, err, domain.ErrAbsentSource)
}
