package server

import "context"

// Server defines the lifecycle of the dev API server.
type Server interface {
	// RunServer serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT
	// arrives, then shuts down gracefully.
	RunServer(ctx context.Context) error

	// Shutdown stops the server and frees associated resources.
	Shutdown(ctx context.Context) error
}
