// Package ipc exposes daemon control over JSON-RPC on a Unix domain socket.
//
// The CLI is the primary client: it submits uploads, reads history, and
// long-polls progress subscriptions through the Vidlift service. Upload is
// synchronous; callers that want live progress open a watch subscription
// first and fetch from a second connection.
package ipc
