// Command bridge is the CLI for the Bridge pod handoff tracker. It manages
// pods directly against the SQLite store and can run the background daemon
// that hosts the HTTP API and the elapsed-time accountant.
package main
