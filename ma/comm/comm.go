// Package comm implements the multi-agent Comm abstraction (spec.md
// §4.8): send_to / send_to_all / send_in_ring / recv / recv_block /
// recv_block_timeout, over either in-process FIFO queues or a pluggable
// TCP transport. Messages are passed as already-encoded ma/wire records
// ([]byte); comm does not know about message semantics, only about
// delivering bytes between agent IDs in FIFO per-(sender,receiver) order
// (spec.md §5, "Ordering guarantees").
package comm

import (
	"errors"
	"time"
)

// ErrClosed is returned by Send*/Recv* once a peer (or the whole comm) has
// been closed (spec.md §7, "CommClosed").
var ErrClosed = errors.New("comm: channel closed")

// ErrTimeout is returned by RecvBlockTimeout when no message and no wake
// arrives before the deadline (spec.md §7, "CommTimeout").
var ErrTimeout = errors.New("comm: recv timeout")

// Comm is the per-agent communication endpoint (spec.md §4.8): "send_to,
// send_to_all, send_in_ring, recv, recv_block, recv_block_timeout".
type Comm interface {
	// Self returns this endpoint's own agent ID.
	Self() int

	// SendTo delivers msg to peer's inbound queue. FIFO per (Self, peer)
	// pair (spec.md §5).
	SendTo(peer int, msg []byte) error

	// SendToAll delivers msg to every other agent.
	SendToAll(msg []byte) error

	// SendInRing delivers msg to the next agent after Self in ring order,
	// used by the snapshot protocol's Mark broadcast and the termination
	// protocol's ring pass (spec.md §4.8).
	SendInRing(msg []byte) error

	// Recv performs a non-blocking receive: (msg, from, true) if a
	// message was queued, else (nil, 0, false). This is the "try_recv"
	// polled between search steps (spec.md §5).
	Recv() (msg []byte, from int, ok bool)

	// RecvBlock blocks until a message arrives or Wake is called from
	// another goroutine (spec.md §5: "recv_block blocks until either a
	// message arrives or another thread pushes an explicit 'wake'
	// sentinel").
	RecvBlock() (msg []byte, from int, err error)

	// RecvBlockTimeout is RecvBlock bounded by d, returning ErrTimeout on
	// expiry (spec.md §5, "per-wait cancellation in MA mode").
	RecvBlockTimeout(d time.Duration) (msg []byte, from int, err error)

	// Wake unblocks a pending RecvBlock/RecvBlockTimeout without
	// delivering a message.
	Wake()

	// Close releases this endpoint. Further Send* calls return
	// ErrClosed; whether pending or later receives are released is up to
	// the implementation.
	Close() error
}
