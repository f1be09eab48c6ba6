// Package daemon runs the long-lived chalktalk service: it enforces
// single-instance execution with a file lock and exposes the HTTP API that
// accepts problem statements and streams back finished videos.
package daemon
