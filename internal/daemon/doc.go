// Package daemon coordinates the long-running subsmith services: the
// Telegram bot, the workflow manager, and the queue store. It enforces
// single-instance execution through a lock file and exposes the
// management operations consumed by the IPC server.
package daemon
