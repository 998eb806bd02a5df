package zipcd

import (
	"context"
	"errors"
	"io"
	"sync"
)

// LocalHeaderResult is the outcome of resolving the local file header of a single entry.
type LocalHeaderResult struct {
	Index  int
	Header LocalFileHeader
	Err    error
}

// ResolveLocalHeaders resolves the local file header of every entry using up to n goroutines.
//
// Each goroutine calls open once to get its own independent read-only handle to the same archive, and closes that
// handle when done if it implements io.Closer. If open is nil, all goroutines share the Archive's own source which is
// only worthwhile if that source supports parallel ReadAt (OpenFile and NewReader, but not Open).
//
// The returned slice has one result per entry in central directory order. Per-entry failures are reported in
// LocalHeaderResult.Err (as *EntryError) and do not stop the other entries. The returned error is non-nil only if a
// handle cannot be opened or ctx is cancelled, in which case entries that were never attempted have ctx.Err() as their
// error. Successfully resolved headers are cached the same way LocalHeader does.
func (a *Archive) ResolveLocalHeaders(ctx context.Context, n int, open func() (io.ReaderAt, error)) ([]LocalHeaderResult, error) {
	results := make([]LocalHeaderResult, len(a.entries))
	for i := range results {
		results[i].Index = i
	}
	if len(a.entries) == 0 {
		return results, nil
	}

	n = max(1, min(n, len(a.entries)))
	owned := open != nil
	if !owned {
		open = func() (io.ReaderAt, error) {
			return a.src, nil
		}
	}

	var (
		indices = make(chan int)
		wg      sync.WaitGroup

		// mu guards openErr.
		mu      sync.Mutex
		openErr error
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			src, err := open()
			if err != nil {
				mu.Lock()
				openErr = errors.Join(openErr, &IOError{Op: "open parallel handle", Err: err})
				mu.Unlock()
				cancel()
				return
			}
			if c, ok := src.(io.Closer); ok && owned {
				defer c.Close()
			}

			for i := range indices {
				results[i] = a.resolveWith(src, i)
			}
		}()
	}

	attempted := 0
submit:
	for i := range a.entries {
		if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			break submit
		case indices <- i:
			attempted++
		}
	}
	close(indices)
	wg.Wait()

	if attempted < len(a.entries) {
		err := context.Cause(ctx)
		for i := attempted; i < len(results); i++ {
			results[i].Err = err
		}

		if openErr != nil {
			return results, openErr
		}
		return results, err
	}

	return results, openErr
}

// resolveWith is LocalHeader reading from src instead of the Archive's own source.
func (a *Archive) resolveWith(src io.ReaderAt, i int) LocalHeaderResult {
	e := a.entries[i]

	a.mu.Lock()
	h, ok := a.headers[i]
	a.mu.Unlock()
	if ok {
		return LocalHeaderResult{Index: i, Header: h}
	}

	h, err := readLocalHeader(src, a.size, e)
	if err != nil {
		return LocalHeaderResult{Index: i, Err: &EntryError{Index: i, Name: e.Name, Err: err}}
	}

	a.mu.Lock()
	a.headers[i] = h
	a.mu.Unlock()

	return LocalHeaderResult{Index: i, Header: h}
}
