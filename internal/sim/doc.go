// Package sim provides a simulated AquaClean bridge for development and
// integration testing without hardware.
//
// The simulator serves the same WebSocket endpoint as a real bridge and
// backs it with an in-memory appliance model that speaks the framed
// protocol: commands toggle state, data-point reads and writes hit a
// point table, and status requests return the positional status bytes.
// Absent data points get no response, so feature probing behaves like it
// does against real firmware. With announcements enabled the simulator
// also registers itself over mDNS and is picked up by normal discovery.
package sim
