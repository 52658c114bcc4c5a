// Command fibseq drives resumable integer sequences (Fibonacci, Lucas,
// counters or a replayed list) with reset signals, from the command line,
// an interactive REPL or an HTTP API.
package main

import (
	"context"
	"os"

	"github.com/agbru/fibseq/internal/app"
)

func main() {
	os.Exit(app.Main(context.Background(), os.Args, os.Stdout, os.Stderr))
}
