// Package buildinfo reports the build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/korssa/gong34/internal/buildinfo.buildVersion=v1.0.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", valueOrNA(buildVersion))
	fmt.Fprintf(w, "Build date: %s\n", valueOrNA(buildDate))
	fmt.Fprintf(w, "Build commit: %s\n", valueOrNA(buildCommit))
}

// Version is the injected version or "N/A".
func Version() string { return valueOrNA(buildVersion) }
