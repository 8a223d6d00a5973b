// Package api provides an HTTP API server for storing and querying per-line
// authorship attributions.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8082")
	ListenAddr string
}
