//go:build windows

package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

// exit keeps the console open when started from Explorer (e.g. dragging an archive onto the executable) so that the
// output can be read before the window closes.
func exit(err error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = fmt.Fprintf(os.Stderr, "Press any key to close console\n")
		r := bufio.NewReader(os.Stdin)
		_, _, _ = r.ReadRune()
	}

	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}
