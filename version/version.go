// Package version provides build version information embedding.
//
// Version and git commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/peertrack/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// Get returns version information, falling back to the binary's embedded
// build info for fields not set via ldflags.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		if info.GitCommit == "" {
			for _, setting := range buildInfo.Settings {
				if setting.Key == "vcs.revision" {
					info.GitCommit = setting.Value
					break
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

func (i Info) String() string {
	if i.GitCommit == "" {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit)
}
