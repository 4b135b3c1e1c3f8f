// Package client implements the request/response session layer for an
// AquaClean appliance.
//
// A Client sits on top of a transport.Transport and enforces the
// protocol's single-outstanding-request rule: every exported operation
// takes the request mutex, transmits one stuffed frame, and waits for the
// next completed inbound message or a timeout. Timeouts surface as
// ErrNoResponse and are an ordinary outcome on this appliance; firmware
// variants ignore requests for features they do not carry, which is what
// feature probing relies on.
//
// The package also tracks device state. Toggle commands are acknowledged
// before their effect appears in a status read, so acknowledged toggles
// are recorded as tentative and reconciled by the next real snapshot.
package client
