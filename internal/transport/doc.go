// Package transport carries stuffed link packets to and from the
// appliance.
//
// The protocol core only needs two capabilities: write one packet, and
// receive raw inbound notification packets in order. Transport captures
// exactly that boundary; reconnection and discovery are the caller's
// concern.
//
// WSTransport is the production implementation: a client for a
// BLE-to-WebSocket bridge that relays each appliance notification as one
// binary WebSocket message.
package transport
