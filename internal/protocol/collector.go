package protocol

import (
	"sort"

	"github.com/muurk/aquaclean/internal/logging"
	"go.uber.org/zap"
)

// FrameCollector reassembles link frames into complete application
// messages.
//
// Per frame kind the collector is either idle or accumulating Consecutive
// fragments. A Single frame completes immediately. Consecutive fragments
// are buffered until one arrives with the final-fragment flag set; the
// buffered fragments are then ordered by transaction number, concatenated,
// and the pending list for that kind is cleared. FlowControl frames are
// accepted but never produce a message.
//
// Completed messages are handed out in completion order, regardless of how
// fragments of different kinds interleaved on the link.
//
// The collector is not safe for concurrent use; callers feed it from a
// single notification path.
type FrameCollector struct {
	pending  map[FrameKind][]*Frame
	complete [][]byte
}

// NewFrameCollector creates an empty collector.
func NewFrameCollector() *FrameCollector {
	return &FrameCollector{
		pending: make(map[FrameKind][]*Frame),
	}
}

// AddFrame feeds one parsed frame into the collector. It reports whether
// the frame completed an application message.
func (c *FrameCollector) AddFrame(frame *Frame) bool {
	switch frame.Kind {
	case KindSingle:
		c.complete = append(c.complete, frame.Payload)
		return true

	case KindConsecutive:
		c.pending[frame.Kind] = append(c.pending[frame.Kind], frame)
		if !frame.Flag {
			// Not the final fragment; keep accumulating.
			return false
		}
		return c.assemble(frame.Kind)

	case KindFlowControl:
		// Link-level acknowledgment, carries no application data.
		return false

	default:
		logging.Warn("Dropping frame of unknown kind",
			zap.String("frame", frame.String()),
		)
		return false
	}
}

// assemble concatenates the pending fragments for a kind in transaction
// order and moves the result to the completed queue.
func (c *FrameCollector) assemble(kind FrameKind) bool {
	frames := c.pending[kind]
	if len(frames) == 0 {
		return false
	}

	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Transaction < frames[j].Transaction
	})

	size := 0
	for _, f := range frames {
		size += len(f.Payload)
	}
	msg := make([]byte, 0, size)
	for _, f := range frames {
		msg = append(msg, f.Payload...)
	}

	delete(c.pending, kind)
	c.complete = append(c.complete, msg)

	logging.Debug("Assembled complete message",
		zap.Int("fragments", len(frames)),
		zap.Int("bytes", len(msg)),
	)
	return true
}

// CompleteMessage pops the oldest completed message. The second return
// value reports whether a message was available.
func (c *FrameCollector) CompleteMessage() ([]byte, bool) {
	if len(c.complete) == 0 {
		return nil, false
	}
	msg := c.complete[0]
	c.complete = c.complete[1:]
	return msg, true
}

// PendingFragments reports how many fragments are buffered for a kind.
// Useful for diagnostics and tests.
func (c *FrameCollector) PendingFragments(kind FrameKind) int {
	return len(c.pending[kind])
}

// Reset discards all pending fragments and completed messages.
func (c *FrameCollector) Reset() {
	c.pending = make(map[FrameKind][]*Frame)
	c.complete = nil
}
