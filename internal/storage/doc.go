package storage

// Package storage persists per-guild scheduler and listener state.
//
// It currently supports:
//   - Recurring fetch schedules (job key -> UTC millisecond-of-day)
//   - Failure-notification listener sets (ordered user ids)
