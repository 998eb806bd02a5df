package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcd"
	"github.com/nguyengg/zipcd/decompress"
	"github.com/nguyengg/zipcd/internal"
	"golang.org/x/time/rate"
)

// Extract decompresses every entry of ZIP archives.
type Extract struct {
	Dir         flags.Filename `short:"d" long:"dir" description:"extract directly into this directory instead of creating a new directory named after the archive"`
	NoOverwrite bool           `long:"no-overwrite" description:"skip files that already exist instead of overwriting them"`
	Quiet       bool           `short:"q" long:"quiet" description:"log progress periodically instead of showing a progress bar"`
	Args        struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local or s3://bucket/key ZIP archives" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Extract) Execute(args []string) error {
	if err := checkArgs(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		logger := internal.NewLogger(i, n, file)

		output, err := c.extract(ctx, string(file), logger)
		if err == nil {
			logger.Printf(`extracted to "%s"`, output)
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		logger.Printf("extract error: %v", err)
	}

	log.Printf("successfully extracted %d/%d files", success, n)
	return nil
}

// extract extracts the named archive and returns the output directory.
func (c *Extract) extract(ctx context.Context, name string, logger *log.Logger) (string, error) {
	a, closer, err := openArchive(ctx, name, fullDownload)
	if err != nil {
		return "", err
	}
	defer closer()

	var (
		output  = string(c.Dir)
		rootDir internal.RootDir
		total   int64
		names   = make([]string, 0, a.EntryCount())
	)
	for _, e := range a.Entries() {
		names = append(names, e.Name)
		total += int64(e.UncompressedSize)
	}

	if output == "" {
		// entries sharing a single top-level directory are extracted without it since the new directory already
		// carries the archive's name.
		rootDir = internal.FindZipRootDir(names)
		stem, _ := internal.StemAndExt(filepath.Base(name))
		if output, err = internal.MkExclDir(".", stem); err != nil {
			return "", err
		}
	} else if err = os.MkdirAll(output, 0755); err != nil {
		return "", fmt.Errorf("create output directory error: %w", err)
	}

	var w io.Writer = io.Discard
	if !c.Quiet {
		bar := internal.DefaultBytes(total, "extracting")
		defer bar.Close()
		w = bar
	}

	var (
		buf       = make([]byte, 32*1024)
		sometimes = rate.Sometimes{Interval: 5 * time.Second}
		n         = a.EntryCount()
		written   int64
		skipped   int
	)

	for i, e := range a.Entries() {
		switch {
		case !internal.IsLocalName(e.Name):
			logger.Printf(`skipping entry %d "%s": not a local path`, i, e.Name)
			skipped++
			continue
		case !decompress.Supported(e.Method):
			logger.Printf(`skipping entry %d "%s": unsupported compression method %s`, i, e.Name, methodName(e.Method))
			skipped++
			continue
		}

		path := rootDir.Join(output, e.Name)
		fh := e.FileHeader()
		fi := fh.FileInfo()
		if fi.IsDir() {
			if err = os.MkdirAll(path, 0755); err != nil {
				return output, fmt.Errorf(`create directory "%s" error: %w`, path, err)
			}
			continue
		}

		m, err := c.extractEntry(ctx, a, i, path, fi.Mode().Perm(), w, buf)
		switch {
		case errors.Is(err, os.ErrExist):
			logger.Printf(`skipping entry %d "%s": file already exists`, i, e.Name)
			skipped++
			continue
		case err != nil:
			return output, err
		}

		if err = os.Chtimes(path, time.Time{}, e.Modified()); err != nil {
			return output, fmt.Errorf(`change mod time of "%s" error: %w`, path, err)
		}

		written += m
		if c.Quiet {
			sometimes.Do(func() {
				logger.Printf(`[%d/%d] extracted %s / %s so far`, i+1, n, humanize.IBytes(uint64(written)), humanize.IBytes(uint64(total)))
			})
		}
	}

	if skipped > 0 {
		logger.Printf("skipped %d/%d entries", skipped, n)
	}

	return output, nil
}

func (c *Extract) extractEntry(ctx context.Context, a *zipcd.Archive, i int, path string, perm os.FileMode, progress io.Writer, buf []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf(`create path to file "%s" error: %w`, path, err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if c.NoOverwrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	if perm == 0 {
		perm = 0644
	}

	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return 0, err
	}

	rc, err := decompress.Open(a, i)
	if err != nil {
		_ = f.Close()
		return 0, err
	}

	written, err := zipcd.CopyBufferWithContext(ctx, io.MultiWriter(f, progress), rc, buf)
	_ = rc.Close()
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, fmt.Errorf(`write to file "%s" error: %w`, path, err)
	}

	return written, nil
}
