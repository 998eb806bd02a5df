package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcd/internal"
	"github.com/nguyengg/zipcd/internal/config"
)

// Headers resolves the local file header of every entry in parallel.
type Headers struct {
	Parallelism int `short:"P" long:"parallelism" description:"number of goroutines resolving local file headers; defaults to workers from .zipcd or the number of CPUs"`
	Args        struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local or s3://bucket/key ZIP archives" required:"yes"`
	} `positional-args:"yes"`

	output
}

func (c *Headers) Execute(args []string) error {
	if err := checkArgs(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		logger := internal.NewLogger(i, n, file)

		err := c.resolve(ctx, string(file), logger)
		if err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		logger.Printf("resolve local file headers error: %v", err)
	}

	log.Printf("successfully resolved %d/%d files", success, n)
	return nil
}

func (c *Headers) workers() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	if w := config.ForZipcd().Workers; w > 0 {
		return w
	}

	return runtime.NumCPU()
}

func (c *Headers) resolve(ctx context.Context, name string, logger *log.Logger) error {
	a, closer, err := openArchive(ctx, name, rangedReads)
	if err != nil {
		return err
	}
	defer closer()

	// every goroutine gets its own file handle; s3:// sources are already safe for parallel reads.
	var open func() (io.ReaderAt, error)
	if !internal.IsS3URI(name) {
		open = func() (io.ReaderAt, error) {
			return os.Open(name)
		}
	}

	results, err := a.ResolveLocalHeaders(ctx, c.workers(), open)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.stdout(), 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tOFFSET\tMETHOD\tCRC32\tPAYLOAD\tNAME")

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Printf("%v", r.Err)
			continue
		}

		h := r.Header
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%08x\t[%d, %d)\t%s\n", r.Index, h.Offset, methodName(h.Method), h.CRC32, h.Payload.Offset, h.Payload.End(), h.Name)
	}

	if err = tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d local file headers could not be resolved", failed, len(results))
	}

	logger.Printf("resolved %d local file headers", len(results))
	return nil
}
