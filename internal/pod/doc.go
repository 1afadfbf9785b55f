// Package pod persists project handoff pods in SQLite and defines their data
// model.
//
// A Pod is a named initiative that flows through an ordered sequence of role
// stages. Each stage position is occupied by one Member; exactly one member is
// active at a time and advancement is driven by the handoff engine, never by
// direct mutation. Tasks are informational work items attached to a pod and do
// not gate stage progression.
//
// The Store manages database connections, schema initialization, snapshot
// reads and writes, and the targeted elapsed-time update used by the
// accountant tick. Treat this package as the single source of truth for pod
// semantics; when you add fields, update schema.sql and bump schemaVersion.
package pod
