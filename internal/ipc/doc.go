// Package ipc implements the control channel between the subsmith CLI and
// the daemon: JSON-RPC over a Unix domain socket. The server wraps a
// daemon.Daemon; the client provides typed wrappers for every RPC method.
package ipc
