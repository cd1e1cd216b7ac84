// Package version exposes build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time, e.g.
//
//	-X github.com/jackzampolin/sheaf/version.GitRelease=v0.2.0
var (
	// GitRelease is the release tag of this build.
	GitRelease = "dev"

	// GitCommit is the commit hash of this build.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of this build.
	GitCommitDate = "unknown"
)

// GoInfo describes the Go toolchain and target platform.
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
