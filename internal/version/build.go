// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version surfaces build information stamped in at link time.
package version

import "fmt"

// These variables are overridden via ldflags by the release build.
var (
	commitSHA     = ""
	latestVersion = ""
	date          = ""
)

// Info holds build information.
type Info struct {
	GitCommit  string `json:"gitCommit"`
	GitVersion string `json:"gitVersion"`
	BuildDate  string `json:"buildDate"`
}

// Get creates and initialized Info object.
func Get() Info {
	return Info{
		GitCommit:  commitSHA,
		GitVersion: latestVersion,
		BuildDate:  date,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("git-commit=%s, git-version=%s, build-date=%s",
		i.GitCommit, i.GitVersion, i.BuildDate)
}
