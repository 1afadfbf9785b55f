// Package notifications delivers handoff events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The handoff engine emits a notification when a member hands off
// and when a pod's final stage completes; delivery failures are logged but
// never block or roll back a stage transition.
//
// Extend this package if you need alternative transports; the engine depends
// only on the simple Service interface.
package notifications
