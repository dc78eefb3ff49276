// Package server implements the HTTP chat front-end: the POST /prompt
// endpoint with its two response modes (SSE stream and single JSON
// completion), health probes, the prometheus metrics endpoint, and the
// shared Context owning the process-wide dependencies.
package server
