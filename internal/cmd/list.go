package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcd"
	"github.com/nguyengg/zipcd/internal"
)

// List prints one line per central directory entry.
type List struct {
	Local bool `long:"local" description:"also resolve the local file header of each entry and print its payload range"`
	Args  struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local or s3://bucket/key ZIP archives" required:"yes"`
	} `positional-args:"yes"`

	output
}

func (c *List) Execute(args []string) error {
	if err := checkArgs(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		logger := internal.NewLogger(i, n, file)

		err := c.list(ctx, string(file), logger)
		if err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		logger.Printf("list error: %v", err)
	}

	log.Printf("successfully listed %d/%d files", success, n)
	return nil
}

func (c *List) list(ctx context.Context, name string, logger *log.Logger) error {
	a, closer, err := openArchive(ctx, name, rangedReads)
	if err != nil {
		return err
	}
	defer closer()

	tw := tabwriter.NewWriter(c.stdout(), 0, 8, 2, ' ', 0)
	if c.Local {
		_, _ = fmt.Fprintln(tw, "#\tMETHOD\tCOMPRESSED\tSIZE\tMODIFIED\tNAME\tPAYLOAD")
	} else {
		_, _ = fmt.Fprintln(tw, "#\tMETHOD\tCOMPRESSED\tSIZE\tMODIFIED\tNAME")
	}

	for i, e := range a.Entries() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s",
			i,
			methodName(e.Method),
			humanize.IBytes(uint64(e.CompressedSize)),
			humanize.IBytes(uint64(e.UncompressedSize)),
			e.Modified().Format(time.DateTime),
			e.Name)

		if c.Local {
			switch r, err := a.PayloadRange(i); {
			case err != nil:
				logger.Printf("resolve local file header error: %v", err)
				line += "\t-"
			default:
				line += fmt.Sprintf("\t[%d, %d)", r.Offset, r.End())
			}
		}

		_, _ = fmt.Fprintln(tw, line)
	}

	if err = tw.Flush(); err != nil {
		return err
	}

	logger.Printf("%d entries", a.EntryCount())
	return nil
}

// methodName returns a human-friendly name of the compression method.
func methodName(method uint16) string {
	switch method {
	case zipcd.Store:
		return "store"
	case zipcd.Deflate:
		return "deflate"
	case 12:
		return "bzip2"
	case 14:
		return "lzma"
	case 93:
		return "zstd"
	case 95:
		return "xz"
	case 98:
		return "ppmd"
	case 99:
		return "aes"
	default:
		return fmt.Sprintf("%d", method)
	}
}
