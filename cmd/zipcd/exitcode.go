package main

import (
	"errors"

	"github.com/jessevdk/go-flags"
)

// exitCode maps the error from parsing and running a command to the process exit status.
//
// Help output is not a failure. Errors from go-flags itself (unknown flag, missing argument, etc.) are usage errors and
// exit with 2 like most CLI tools; everything else exits with 1.
func exitCode(err error) int {
	if err == nil || flags.WroteHelp(err) {
		return 0
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		return 2
	}

	return 1
}
