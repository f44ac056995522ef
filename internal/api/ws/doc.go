// Package ws handles the document-surface stream.
//
// The surface reports placeholder lifecycle and raw geometry over a
// websocket: mount, geometry, url, retry, unmount. The core pushes back
// status changes, navigation updates, and re-measure requests so the
// surface can render spinners and error panels without polling.
package ws
