// Package host defines the message contracts to the privileged view-host
// process and a client implementation.
//
// The host exclusively owns the native view resources. The core never
// queries or mutates them synchronously: commands go out as one-way
// messages on a websocket event link, request/response operations go
// through an HTTP control endpoint, and lifecycle/navigation events come
// back on the event link tagged with their origin.
//
// Wire messages:
//   - update-view, remove-view (core to host)
//   - view-initialized, navigation-update (host to core)
//   - navigate-back, devtools state/toggle (control endpoint)
package host
