// Package handoff drives pods through their stage sequence.
//
// The Engine owns every machine-managed field on a pod: lifecycle status, the
// stage cursor, member completion flags, work timestamps, and elapsed-day
// figures. Updates arriving from the API or CLI are treated as proposals; the
// engine reconciles them against the stored snapshot so a client can never
// skip a stage or rewind the cursor by editing derived fields.
//
// A stage advances on exactly one signal: the active member's handoff link
// transitioning from empty to non-empty. The completed member is stamped, the
// cursor moves, the next member's clock starts, and a notification is
// published. When the final member hands off the pod completes.
//
// The accountant tick recomputes elapsed working days for every active member
// and promotes planning pods whose start date has arrived. Runner wraps the
// tick in a periodic loop for the daemon.
package handoff
