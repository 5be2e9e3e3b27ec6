// Package version carries the build identity reported by the internal
// healthz endpoint. Version, Commit and BuildDate are overridden at
// release time via -ldflags "-X".
package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // dev builds report process start
	GoVersion = runtime.Version()
)
