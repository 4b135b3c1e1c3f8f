// Package config manages the user's persistent configuration file.
//
// The registry stores client-side metadata that the appliance itself has
// no room for: nicknames, the bridge address an appliance was last seen
// behind, user profile labels, and probed feature support. It is a single
// YAML file in the platform's standard configuration directory, written
// atomically via a temp-file rename.
//
// The registry is loaded once per process and shared; Save persists the
// in-memory state, ReloadRegistry discards it in favour of the on-disk
// copy.
package config
