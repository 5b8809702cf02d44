// Package scheduler owns astrobot's recurring fetch jobs.
//
// # Overview
//
// Each job is a (target, UTC time-of-day) pair registered under the target's
// canonical key ("Skywatch@123#c456"). Keys are stable and human readable so
// jobs can be replaced (upserted) and cancelled deterministically. Jobs are
// grouped per guild; each guild's table persists as one unit and is restored
// at startup.
//
// # Firing
//
// A single UTC cron drives every job at its daily "M H * * *" spec. On each
// firing the job key is parsed back into a Target (resolving the recipient
// through the live directory) and handed to the dispatcher. Firing never
// changes job state.
//
// # Persistence
//
// The guild table is written synchronously after every schedule/cancel.
// Write failures are logged and not retried: the in-memory schedule stays
// authoritative for the life of the process. At startup, each persisted
// entry re-installs its timer through the same install path scheduling
// uses; a guild's file is rewritten at restore only when unparseable
// entries had to be dropped from it.
package scheduler
