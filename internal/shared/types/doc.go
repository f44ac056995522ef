// Package types provides shared data structures for the blockview core.
//
// This package defines the types exchanged between the measurement layer
// and the view host, keeping wire contracts in one place.
//
// Core Types:
//   - Bounds: Clipped, visible placeholder rectangle
//   - ViewRecord: Latest known URL and bounds per view
//   - InitStatus: Per-view initialization state
//   - ClassifiedError: User-facing navigation failure payload
//
// Message Types:
//   - UpdateView, RemoveView: Core-to-host commands
//   - ViewInitialized, NavigationUpdate: Host-to-core events
//   - NavigateBackResult, DevToolsResult: Request/response payloads
//
// Every applied event carries an Origin tag so downstream state machines
// can distinguish host-originated events from local echoes.
package types
