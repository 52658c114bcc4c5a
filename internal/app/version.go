// Package app wires the fibseq binary together: it parses the
// configuration, then runs a sequence, the HTTP server, the REPL or the
// completion generator.
package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build metadata, set with -ldflags:
//
//	go build -ldflags="-X github.com/agbru/fibseq/internal/app.Version=v0.3.0 -X github.com/agbru/fibseq/internal/app.Commit=$(git rev-parse --short HEAD)" ./cmd/fibseq
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether any argument asks for the version, so that
// "fibseq -server --version" works too.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// PrintVersion writes the build metadata and the runtime platform.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "fibseq %s\n", Version)
	fmt.Fprintf(out, "  Commit:     %s\n", Commit)
	fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// VersionData is the JSON form of the build metadata.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the build metadata.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
