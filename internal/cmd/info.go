package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcd/internal"
)

// Info prints the end of central directory record.
type Info struct {
	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local or s3://bucket/key ZIP archives" required:"yes"`
	} `positional-args:"yes"`

	output
}

func (c *Info) Execute(args []string) error {
	if err := checkArgs(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		logger := internal.NewLogger(i, n, file)

		err := c.info(ctx, string(file))
		if err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		logger.Printf("info error: %v", err)
	}

	log.Printf("successfully read %d/%d files", success, n)
	return nil
}

func (c *Info) info(ctx context.Context, name string) error {
	a, closer, err := openArchive(ctx, name, rangedReads)
	if err != nil {
		return err
	}
	defer closer()

	r := a.EOCD()
	w := c.stdout()
	_, _ = fmt.Fprintf(w, "file: %s\n", name)
	_, _ = fmt.Fprintf(w, "size: %d (%s)\n", a.Size(), humanize.IBytes(uint64(a.Size())))
	_, _ = fmt.Fprintf(w, "eocd offset: %d\n", r.Start)
	_, _ = fmt.Fprintf(w, "disk number: %d\n", r.DiskNumber)
	_, _ = fmt.Fprintf(w, "central directory disk number: %d\n", r.CDDiskNumber)
	_, _ = fmt.Fprintf(w, "central directory entries on this disk: %d\n", r.CDCountOnDisk)
	_, _ = fmt.Fprintf(w, "central directory entries: %d\n", r.CDCount)
	_, _ = fmt.Fprintf(w, "central directory offset: %d\n", r.CDOffset)
	_, _ = fmt.Fprintf(w, "central directory size: %d (%s)\n", r.CDSize, humanize.IBytes(uint64(r.CDSize)))
	_, _ = fmt.Fprintf(w, "comment length: %d\n", r.CommentLength)
	if len(r.Comment) > 0 {
		_, _ = fmt.Fprintf(w, "comment: %s\n", strconv.Quote(string(r.Comment)))
	}

	return nil
}
