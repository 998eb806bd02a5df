package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipcd/internal/config"
)

// Zipcd is the root command.
type Zipcd struct {
	Profile string  `short:"p" long:"profile" description:"override the AWS profile used for s3:// files" default-mask:"-"`
	List    List    `command:"list" alias:"ls" description:"list the central directory entries of ZIP archives"`
	Info    Info    `command:"info" description:"print the end of central directory record of ZIP archives"`
	Headers Headers `command:"headers" description:"resolve the local file headers of all entries in parallel"`
	Extract Extract `command:"extract" alias:"x" description:"extract ZIP archives"`
	Raw     Raw     `command:"raw" description:"copy the raw (still compressed) payload of a single entry"`
}

// NewParser creates the parser for the root command.
//
// The configuration file is loaded before any command is executed; --profile overrides any profile from the
// configuration file.
func NewParser() *flags.Parser {
	opts := &Zipcd{}

	p := flags.NewNamedParser("zipcd", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		panic(err)
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}

		if _, err := config.LoadProfile(context.Background(), opts.Profile); err != nil {
			return fmt.Errorf("load config error: %w", err)
		}

		return command.Execute(args)
	}

	return p
}

func checkArgs(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	return nil
}

// output is embedded by commands that print results to stdout.
type output struct {
	w io.Writer
}

func (o *output) stdout() io.Writer {
	if o.w == nil {
		return os.Stdout
	}

	return o.w
}
