// Package config provides configuration loading, merging, and validation
// facilities for the drive client and the development API server.
//
// Configuration is assembled from multiple sources in the following priority
// order (a field set by an earlier source is kept, later sources only fill
// zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetClientConfig] for the terminal client and
// [GetDevServerConfig] for cmd/devserver.
package config
