// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/jackzampolin/surveytab/version.GitRelease=v0.1.0" ./cmd/surveytab
package version

import (
	"fmt"
	"runtime"
)

var (
	// GitRelease is the release tag (default: dev).
	GitRelease = "dev"

	// GitCommit is the commit hash of the build.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of the build.
	GitCommitDate = "unknown"

	// GoInfo describes the toolchain and platform.
	GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
)
