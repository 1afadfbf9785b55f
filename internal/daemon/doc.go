// Package daemon runs the background services behind the bridged process:
// single-instance locking, the accountant tick loop, and the local HTTP API
// used by the CLI and web clients.
package daemon
