// Package protocol implements the AquaClean appliance binary protocol.
//
// This package handles framing, reassembly, construction, and parsing of
// the messages exchanged with AquaClean shower toilets over a byte-oriented
// notification link with a small MTU. The link cannot carry zero bytes, so
// every packet is byte-stuffed (COBS) and terminated by a single 0x00
// delimiter.
//
// # Link Frame Format
//
// After unstuffing, each packet starts with one header byte:
//
//	bits 7-5  frame kind (single / consecutive / flow-control)
//	bit 4     tag present
//	bits 3-1  transaction number (0-7)
//	bit 0     flag (marks the final fragment on consecutive frames)
//
// Single frames carry their full payload after the header. Consecutive
// frames insert one length byte before the payload and are reassembled by
// the FrameCollector. FlowControl frames are link-level acknowledgments
// and never produce application data.
//
// # Requests and Responses
//
// Requests are built by the New*Request constructors: high-level commands
// (2-byte id), data-point reads and writes (2-byte id + flag + value), and
// the fixed device-info and system-status multi-point reads. All integers
// are little-endian.
//
// Responses are decoded by the tolerant parsers ParseDeviceIdentification
// and ParseSystemParameters: short or garbled buffers fill only the fields
// they can and default the rest, because firmware variants answer with
// inconsistent amounts of data.
//
// # Usage Example
//
//	// Build and stuff a request
//	packet := protocol.EncodeFrame(protocol.NewSystemStatusRequest())
//
//	// Feed received notifications through the collector
//	frame, err := protocol.DecodeFrame(notification)
//	if err != nil {
//	    return err
//	}
//	if collector.AddFrame(frame) {
//	    if msg, ok := collector.CompleteMessage(); ok {
//	        params := protocol.ParseSystemParameters(msg)
//	        ...
//	    }
//	}
package protocol
