package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
//
// maxBytes of -1 creates a spinner.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowTotalBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}

// WriterAtWithProgress wraps an io.WriterAt to report the number of bytes written to a progress bar.
//
// Useful with manager.Downloader which writes parts out of order and in parallel; the progress bar is safe for
// concurrent use.
type WriterAtWithProgress struct {
	W   io.WriterAt
	Bar *progressbar.ProgressBar
}

func (w WriterAtWithProgress) WriteAt(p []byte, off int64) (n int, err error) {
	n, err = w.W.WriteAt(p, off)
	_ = w.Bar.Add(n)
	return
}
