package comm

import (
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// peerMsg is one queued delivery: the sender's agent ID plus the raw
// ma/wire-encoded payload.
type peerMsg struct {
	from int
	body []byte
}

// Hub owns the shared channel matrix backing a set of in-process Comm
// endpoints: one buffered channel per ordered (sender, receiver) pair,
// whose fixed capacity provides the backpressure (spec.md §5, "Shared
// resources... the 'full'/'empty' semaphores enforce backpressure"): a
// send to a full channel blocks; there is no overflow buffer. It also
// holds a single shared shutdown signal for Hub-wide
// teardown (individual agents Close() independently without tearing down
// their peers).
type Hub struct {
	n     int
	chans [][]chan peerMsg // chans[i][j]: channel carrying messages from i to j
	done  chan struct{}
}

// NewHub builds an in-process Hub for n agents, each per-pair channel
// buffered to bufSize (0 means unbuffered, i.e. SendTo blocks until the
// peer receives).
func NewHub(n, bufSize int) *Hub {
	h := &Hub{n: n, chans: make([][]chan peerMsg, n), done: make(chan struct{})}
	for i := 0; i < n; i++ {
		h.chans[i] = make([]chan peerMsg, n)
		for j := 0; j < n; j++ {
			h.chans[i][j] = make(chan peerMsg, bufSize)
		}
	}
	return h
}

// Endpoint returns the Comm for agent self (0 <= self < n), talking over
// this Hub's channel matrix.
func (h *Hub) Endpoint(self int) Comm {
	var inbound []<-chan peerMsg
	for j := 0; j < h.n; j++ {
		if j != self {
			inbound = append(inbound, h.chans[j][self])
		}
	}
	ring := make([]int, h.n)
	for i := range ring {
		ring[i] = i
	}
	return &InProcess{
		self:   self,
		n:      h.n,
		ring:   ring,
		out:    h.chans[self],
		merged: channerics.Merge(h.done, inbound...),
		wake:   make(chan struct{}, 1),
		done:   h.done,
	}
}

// Shutdown tears down every endpoint sharing this Hub at once, unblocking
// any pending RecvBlock calls with ErrClosed.
func (h *Hub) Shutdown() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// InProcess is the in-process-queue Comm implementation (spec.md §4.8:
// "in-process FIFO queues (pairs of (mutex, fifo, full-semaphore) per
// peer)" — realized here as Go's own channel, which already bundles a
// mutex, a FIFO buffer, and a blocking-on-full semaphore).
type InProcess struct {
	self   int
	n      int
	ring   []int
	out    []chan peerMsg
	merged <-chan peerMsg
	wake   chan struct{}
	done   <-chan struct{}

	mu     sync.Mutex
	closed bool
}

func (c *InProcess) Self() int { return c.self }

func (c *InProcess) SendTo(peer int, msg []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if peer < 0 || peer >= c.n || peer == c.self {
		return ErrClosed
	}
	select {
	case c.out[peer] <- peerMsg{from: c.self, body: msg}:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *InProcess) SendToAll(msg []byte) error {
	for j := 0; j < c.n; j++ {
		if j == c.self {
			continue
		}
		if err := c.SendTo(j, msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *InProcess) SendInRing(msg []byte) error {
	next := ringNext(c.ring, c.self)
	if next < 0 {
		return nil
	}
	return c.SendTo(next, msg)
}

// ringNext returns the agent ID following self in ring, or -1 if self is
// not part of the ring or the ring has fewer than two members.
func ringNext(ring []int, self int) int {
	if len(ring) < 2 {
		return -1
	}
	for i, id := range ring {
		if id == self {
			return ring[(i+1)%len(ring)]
		}
	}
	return -1
}

func (c *InProcess) Recv() (msg []byte, from int, ok bool) {
	select {
	case m, open := <-c.merged:
		if !open {
			return nil, 0, false
		}
		return m.body, m.from, true
	default:
		return nil, 0, false
	}
}

func (c *InProcess) RecvBlock() (msg []byte, from int, err error) {
	select {
	case m, open := <-c.merged:
		if !open {
			return nil, 0, ErrClosed
		}
		return m.body, m.from, nil
	case <-c.wake:
		return nil, 0, nil
	case <-c.done:
		return nil, 0, ErrClosed
	}
}

func (c *InProcess) RecvBlockTimeout(d time.Duration) (msg []byte, from int, err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m, open := <-c.merged:
		if !open {
			return nil, 0, ErrClosed
		}
		return m.body, m.from, nil
	case <-c.wake:
		return nil, 0, nil
	case <-timer.C:
		return nil, 0, ErrTimeout
	case <-c.done:
		return nil, 0, ErrClosed
	}
}

func (c *InProcess) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Close makes further Send* calls return ErrClosed. Receives are
// unaffected; Hub.Shutdown releases pending RecvBlock calls.
func (c *InProcess) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
