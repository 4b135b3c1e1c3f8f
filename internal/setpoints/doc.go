// Package setpoints manages the appliance's persistent comfort settings:
// shower water temperature, spray intensity, spray arm position, and the
// active user profile.
//
// Unlike toggles, setpoint writes are not reflected in the boolean status
// map, so the Applier verifies them by reading the matching status data
// points back after a write, with retries to ride out the appliance's
// settling time. A firmware that does not answer a read-back simply has
// that field skipped during verification.
//
// RollbackManager snapshots the current setpoints before an update and can
// restore them if verification fails.
package setpoints
