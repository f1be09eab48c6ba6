// Package deps resolves the external tool binaries the pipeline shells out to
// and reports which required tools are missing before any work begins.
package deps
