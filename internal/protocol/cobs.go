package protocol

import (
	"errors"
)

// COBS framing constants
const (
	// Delimiter terminates every encoded frame and never appears earlier in it
	Delimiter = 0x00

	// maxRun is the longest run of non-zero bytes a single count byte can cover
	maxRun = 254
)

// ErrInvalidCOBSFrame is returned when decoding input that is empty or does
// not end with the frame delimiter.
var ErrInvalidCOBSFrame = errors.New("invalid COBS frame")

// EncodeCOBS encodes data using Consistent Overhead Byte Stuffing.
//
// The output contains no zero byte except the single trailing delimiter,
// which makes the frame safe to send over a zero-delimited notification
// link. Each run of non-zero bytes is preceded by a count byte equal to
// run length + 1; a count of 0xFF marks a maximum-length run with no
// implicit zero following it.
//
// Empty input encodes to {0x01, 0x00}.
func EncodeCOBS(data []byte) []byte {
	// Worst case: one extra count byte per 254 data bytes, plus delimiter
	out := make([]byte, 0, len(data)+len(data)/maxRun+2)

	codeIndex := 0
	code := byte(1)
	out = append(out, 0) // placeholder for first count byte

	for _, b := range data {
		if b == 0 {
			out[codeIndex] = code
			codeIndex = len(out)
			out = append(out, 0)
			code = 1
			continue
		}

		out = append(out, b)
		code++
		if code == 0xFF {
			out[codeIndex] = code
			codeIndex = len(out)
			out = append(out, 0)
			code = 1
		}
	}

	out[codeIndex] = code
	out = append(out, Delimiter)
	return out
}

// DecodeCOBS reverses EncodeCOBS.
//
// The input must be a complete frame ending in the delimiter byte; anything
// else is reported as ErrInvalidCOBSFrame rather than decoded partially.
// A count byte of 0xFF covers a maximum-length run, so no implicit zero is
// emitted after it.
func DecodeCOBS(framed []byte) ([]byte, error) {
	if len(framed) == 0 || framed[len(framed)-1] != Delimiter {
		return nil, ErrInvalidCOBSFrame
	}

	body := framed[:len(framed)-1]
	if len(body) == 0 {
		return []byte{}, nil
	}

	out := make([]byte, 0, len(body))
	i := 0

	for i < len(body) {
		code := body[i]
		if code == 0 {
			// A zero before the delimiter means the frame was corrupted
			return nil, ErrInvalidCOBSFrame
		}
		i++

		run := int(code) - 1
		if i+run > len(body) {
			return nil, ErrInvalidCOBSFrame
		}

		out = append(out, body[i:i+run]...)
		i += run

		// The implicit zero is only present when the run ended because of
		// a stuffed zero, not because it hit the maximum run length.
		if code < 0xFF && i < len(body) {
			out = append(out, 0)
		}
	}

	return out, nil
}
