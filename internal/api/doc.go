// Package api defines the transport DTOs and service facade shared by the
// HTTP server and the CLI. Converters translate between stored pod records
// and their camelCase wire representation; the PodService wraps the handoff
// engine so both surfaces apply identical semantics.
package api
