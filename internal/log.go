package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

// Prefix creates a consistent prefix for all file-based commands to use.
//
// i and n are the zero-based ordinal and expected count.
func Prefix(i, n int, name flags.Filename) string {
	return fmt.Sprintf(`[%d/%d] "%s" - `, i+1, n, TruncateRightWithSuffix(filepath.Base(string(name)), 30, "..."))
}

// NewLogger creates a new logger writing to stderr using Prefix.
func NewLogger(i, n int, name flags.Filename) *log.Logger {
	return log.New(os.Stderr, Prefix(i, n, name), 0)
}
