// Package s3readerat implements io.ReaderAt over an S3 object using ranged GetObject.
//
// Combined with zipcd.NewReader, only the bytes that are actually needed (the EOCD, the central directory, and the local
// file headers) are downloaded from S3 instead of the whole archive.
package s3readerat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client abstracts the S3 APIs that are needed to implement ReaderAt.
type Client interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options customises New.
type Options struct {
	// Ctx is used with every GetObject or HeadObject call.
	//
	// By default, context.Background is used.
	Ctx context.Context

	// ExpectedBucketOwner is passed to every GetObject and HeadObject call if non-nil.
	ExpectedBucketOwner *string

	// Size can be given to skip the initial HeadObject call.
	//
	// By default, the zero value means HeadObject is used to determine the size of the object.
	Size int64
}

// ReaderAt uses ranged GetObject to implement io.ReaderAt.
//
// ReaderAt is safe for concurrent use since every ReadAt is an independent GetObject call.
type ReaderAt struct {
	client              Client
	bucket, key         string
	ctx                 context.Context
	expectedBucketOwner *string
	size                int64
	requests            atomic.Int64
	bytes               atomic.Int64
}

var _ io.ReaderAt = (*ReaderAt)(nil)

// New returns a ReaderAt for the object with the given bucket and key.
func New(client Client, bucket, key string, optFns ...func(*Options)) (*ReaderAt, error) {
	opts := &Options{
		Ctx: context.Background(),
	}
	for _, fn := range optFns {
		fn(opts)
	}

	r := &ReaderAt{
		client:              client,
		bucket:              bucket,
		key:                 key,
		ctx:                 opts.Ctx,
		expectedBucketOwner: opts.ExpectedBucketOwner,
		size:                opts.Size,
	}

	if r.size == 0 {
		headObjectOutput, err := client.HeadObject(opts.Ctx, &s3.HeadObjectInput{
			Bucket:              aws.String(bucket),
			Key:                 aws.String(key),
			ExpectedBucketOwner: opts.ExpectedBucketOwner,
		})
		if err != nil {
			return nil, fmt.Errorf("determine object size error: %w", err)
		}

		r.size = aws.ToInt64(headObjectOutput.ContentLength)
	}

	return r, nil
}

// Size returns the size of the S3 object.
func (r *ReaderAt) Size() int64 {
	return r.size
}

// Requests returns the number of GetObject calls that have been made.
func (r *ReaderAt) Requests() int64 {
	return r.requests.Load()
}

// BytesRead returns the number of bytes that have been downloaded.
func (r *ReaderAt) BytesRead() int64 {
	return r.bytes.Load()
}

// ReadAt reads len(p) bytes starting at off with a single ranged GetObject.
//
// If the object ends before p is filled, the bytes available are returned along with io.EOF.
func (r *ReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	switch {
	case len(p) == 0:
		return 0, nil
	case off < 0:
		return 0, fmt.Errorf("negative offset %d", off)
	case off >= r.size:
		return 0, io.EOF
	}

	end := min(r.size, off+int64(len(p)))

	r.requests.Add(1)
	getObjectOutput, err := r.client.GetObject(r.ctx, &s3.GetObjectInput{
		Bucket:              aws.String(r.bucket),
		Key:                 aws.String(r.key),
		Range:               aws.String(fmt.Sprintf("bytes=%d-%d", off, end-1)),
		ExpectedBucketOwner: r.expectedBucketOwner,
	})
	if err != nil {
		return 0, fmt.Errorf("get object error: %w", err)
	}
	defer getObjectOutput.Body.Close()

	n, err = io.ReadFull(getObjectOutput.Body, p[:end-off])
	r.bytes.Add(int64(n))
	switch {
	case err != nil:
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return n, err
	case n < len(p):
		return n, io.EOF
	default:
		return n, nil
	}
}
