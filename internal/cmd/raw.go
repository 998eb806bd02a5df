package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcd/internal"
)

// Raw copies the raw payload of a single Store or Deflate entry.
type Raw struct {
	Index  int            `short:"i" long:"index" description:"the central directory index of the entry" required:"yes"`
	Output flags.Filename `short:"o" long:"output" description:"write to this file instead of a new file named after the entry; use - for stdout"`
	Args   struct {
		File flags.Filename `positional-arg-name:"file" description:"the local or s3://bucket/key ZIP archive" required:"yes"`
	} `positional-args:"yes"`

	output
}

func (c *Raw) Execute(args []string) error {
	if err := checkArgs(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	logger := internal.NewLogger(0, 1, c.Args.File)

	written, name, err := c.copy(ctx, logger)
	if err != nil {
		return err
	}

	logger.Printf(`wrote %s to "%s"`, humanize.IBytes(uint64(written)), name)
	return nil
}

func (c *Raw) copy(ctx context.Context, logger *log.Logger) (int64, string, error) {
	a, closer, err := openArchive(ctx, string(c.Args.File), fullDownload)
	if err != nil {
		return 0, "", err
	}
	defer closer()

	e, err := a.Entry(c.Index)
	if err != nil {
		return 0, "", err
	}

	var (
		w    io.Writer
		name = string(c.Output)
	)
	switch name {
	case "-":
		w, name = c.stdout(), "stdout"
	case "":
		stem, ext := internal.StemAndExt(path.Base(e.Name))
		f, err := internal.OpenExclFile(stem, ext+"."+methodName(e.Method))
		if err != nil {
			return 0, "", err
		}
		defer f.Close()
		w, name = f, f.Name()
	default:
		f, err := os.Create(name)
		if err != nil {
			return 0, "", fmt.Errorf("create file error: %w", err)
		}
		defer f.Close()
		w = f
	}

	logger.Printf(`copying raw %s payload of entry %d "%s"`, methodName(e.Method), c.Index, e.Name)
	written, err := a.CopyRaw(ctx, c.Index, w)
	return written, name, err
}
