// Package main is the entry point for the blockview sync server.
//
// This service keeps embedded browser blocks synchronized between a
// document surface and the privileged view-host process that owns the
// actual native views.
//
// Architecture:
//
//	Document surface (ws) → blockview core → View host (ws events + HTTP control)
//
// The server provides:
//   - WebSocket stream for placeholder geometry and lifecycle
//   - REST API for view state, retry, history-back, and devtools
//   - Per-view initialization state machine with stall timeout
//   - Navigation failure classification with retry semantics
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./server -port 8600 -host-events ws://127.0.0.1:9400/events
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
