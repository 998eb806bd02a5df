// Package fetch downloads S3 objects to temporary local files.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/zipcd/internal"
	"github.com/schollz/progressbar/v3"
)

// Client abstracts the S3 APIs that are needed by Fetch.
type Client interface {
	manager.DownloadAPIClient
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options customises Fetch.
type Options struct {
	// ExpectedBucketOwner is passed to the HeadObject and GetObject calls if non-nil.
	ExpectedBucketOwner *string

	// Concurrency is the number of parts downloaded in parallel.
	//
	// By default, manager.DefaultDownloadConcurrency is used.
	Concurrency int

	// Dir is the directory to create the temporary file in.
	//
	// By default, os.TempDir is used.
	Dir string

	// Quiet disables the progress bar.
	Quiet bool
}

// Fetch downloads the object with the given bucket and key to a temporary file.
//
// Returns the name of the temporary file and a function that removes it; the function must be called even if the caller
// is not interested in the file anymore. On error, no file is left behind.
func Fetch(ctx context.Context, client Client, bucket, key string, optFns ...func(*Options)) (name string, cleanup func(), err error) {
	opts := &Options{
		Concurrency: manager.DefaultDownloadConcurrency,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	headObjectOutput, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: opts.ExpectedBucketOwner,
	})
	if err != nil {
		return "", nil, fmt.Errorf("head object error: %w", err)
	}
	size := aws.ToInt64(headObjectOutput.ContentLength)

	f, err := os.CreateTemp(opts.Dir, "zipcd-*-"+path.Base(key))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file error: %w", err)
	}
	name = f.Name()
	cleanup = func() {
		_ = os.Remove(name)
	}

	var bar *progressbar.ProgressBar
	if opts.Quiet {
		bar = progressbar.DefaultSilent(size)
	} else {
		bar = internal.DefaultBytes(size, fmt.Sprintf(`downloading "%s"`, path.Base(key)))
	}

	_, err = manager.NewDownloader(client, func(d *manager.Downloader) {
		d.Concurrency = max(1, opts.Concurrency)
	}).Download(ctx, internal.WriterAtWithProgress{W: f, Bar: bar}, &s3.GetObjectInput{
		Bucket:              aws.String(bucket),
		Key:                 aws.String(key),
		ExpectedBucketOwner: opts.ExpectedBucketOwner,
	})
	_ = bar.Close()
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close temp file error: %w", closeErr)
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("download error: %w", err)
	}

	return name, cleanup, nil
}
