// Package instrumentation provides OpenTelemetry-based metrics for
// mailbridge: prompt request counts and durations on the chat path, and
// tool invocation counts and durations on the MCP path, exported in
// prometheus format.
package instrumentation
