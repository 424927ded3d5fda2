// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"io"
	"strings"
)

// BuildValueUnknown replaces build metadata the linker did not inject.
const BuildValueUnknown = "N/A"

// AppBuildInfo carries the build metadata injected with -ldflags and shown
// on startup and on the about screen.
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

// NewAppBuildInfo constructs [AppBuildInfo]. Blank values become
// [BuildValueUnknown].
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		version: orUnknown(version),
		date:    orUnknown(date),
		commit:  orUnknown(commit),
	}
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return BuildValueUnknown
	}
	return v
}

func (a AppBuildInfo) BuildVersion() string { return a.version }

func (a AppBuildInfo) BuildDate() string { return a.date }

func (a AppBuildInfo) BuildCommit() string { return a.commit }

// WriteTo prints the three "Build ...:" lines. It implements [io.WriterTo].
func (a AppBuildInfo) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", a.version, a.date, a.commit)
	return int64(n), err
}
