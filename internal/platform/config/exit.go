package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal configuration failure on stderr and exits with
// code 1. Entry points call it before the keeper's logging is set up.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
