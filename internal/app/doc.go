// Package app wires the analyzer's HTTP server together and manages its
// lifecycle.
//
// NewApplication builds every component from a config.Config: the
// OpenTelemetry providers, the WebSocket hub, the analysis and health
// services, and the chi router with its middleware stack. Run serves until
// its context is cancelled, then drains in-flight requests and flushes the
// telemetry providers.
//
// Routes:
//
//	/ws                    renderer event stream
//	/metrics               Prometheus scrape endpoint
//	/api/health[/ready|/live], /api/version
//	/api/client-log        renderer log forwarding
//	/api/analysis/...      load, inspect and render the active analysis
//	/api/session/...       edit the interactive stiffness and yield points
//	/api/export            append a row to the property table
//	/                      renderer index, or a status page
//
// Initialization errors are returned rather than exiting, so main decides
// the exit code.
package app
