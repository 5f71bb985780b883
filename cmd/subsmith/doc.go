// Command subsmith is the management CLI for the subsmith daemon. It talks
// to subsmithd over the IPC socket and falls back to direct queue access
// when the daemon is not running.
package main
