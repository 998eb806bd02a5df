package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mholt/archives"
	"github.com/nguyengg/zipcd"
	"github.com/nguyengg/zipcd/internal"
	"github.com/nguyengg/zipcd/internal/config"
	"github.com/nguyengg/zipcd/internal/fetch"
	"github.com/nguyengg/zipcd/s3readerat"
)

// sourceMode controls how s3:// files are read.
type sourceMode int

const (
	// rangedReads reads only the structural records from S3 using ranged GetObject.
	rangedReads sourceMode = iota
	// fullDownload downloads the whole object to a temporary file first; use when payloads will be read.
	fullDownload
)

// openArchive opens the named ZIP archive which can be a local file or an S3 object in format s3://bucket/key.
//
// The returned function releases all resources and must be called on a successful return.
func openArchive(ctx context.Context, name string, mode sourceMode) (*zipcd.Archive, func(), error) {
	if !internal.IsS3URI(name) {
		a, err := zipcd.OpenFile(name)
		if err != nil {
			return nil, nil, identify(ctx, name, err)
		}

		return a, func() { _ = a.Close() }, nil
	}

	bucket, key, err := internal.ParseS3URI(name)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.ForBucket(bucket)
	client, err := config.NewS3ClientForBucket(ctx, bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("create s3 client error: %w", err)
	}

	if mode == fullDownload {
		local, cleanup, err := fetch.Fetch(ctx, client, bucket, key, func(opts *fetch.Options) {
			opts.ExpectedBucketOwner = cfg.ExpectedBucketOwner
		})
		if err != nil {
			return nil, nil, err
		}

		a, err := zipcd.OpenFile(local)
		if err != nil {
			err = identify(ctx, local, err)
			cleanup()
			return nil, nil, err
		}

		return a, func() {
			_ = a.Close()
			cleanup()
		}, nil
	}

	r, err := s3readerat.New(client, bucket, key, func(opts *s3readerat.Options) {
		opts.Ctx = ctx
		opts.ExpectedBucketOwner = cfg.ExpectedBucketOwner
	})
	if err != nil {
		return nil, nil, err
	}

	a, err := zipcd.NewReader(r, r.Size())
	if err != nil {
		return nil, nil, err
	}

	return a, func() {}, nil
}

// identify improves the error message if the local file is not a ZIP archive but is some other known format.
//
// Only the contents are used for identification since the file name most likely says .zip.
func identify(ctx context.Context, name string, err error) error {
	if !errors.Is(err, zipcd.ErrEOCDNotFound) {
		return err
	}

	f, openErr := os.Open(name)
	if openErr != nil {
		return err
	}
	defer f.Close()

	format, _, idErr := archives.Identify(ctx, "", f)
	switch {
	case idErr == nil:
		return fmt.Errorf("%w; file looks like %s instead", err, format.Extension())
	case errors.Is(idErr, archives.NoMatch):
		return err
	default:
		return fmt.Errorf("%w; identify error: %v", err, idErr)
	}
}
