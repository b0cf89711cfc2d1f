package comm

import (
	"encoding/binary"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the pluggable carrier TCPComm sends/receives ma/wire
// records over (spec.md §4.8: "TCP via a pluggable transport"). The
// default implementation is WSTransport, reusing the corpus's one
// networking dependency (gorilla/websocket, as used for
// niceyeti-tabular's debug view) as the wire carrier instead of a raw
// net.Conn, so framing (message boundaries) comes for free.
type Transport interface {
	// Dial opens an outbound Conn to addr.
	Dial(addr string) (Conn, error)
	// Serve accepts inbound Conns on addr until done is closed, calling
	// accept for each.
	Serve(addr string, done <-chan struct{}, accept func(Conn)) error
}

// Conn is one message-framed duplex connection.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(p []byte) error
	Close() error
}

// WSTransport implements Transport over gorilla/websocket.
type WSTransport struct {
	// Path is the HTTP path the listener upgrades on, and the client
	// dials against. Defaults to "/ma" if empty.
	Path string
}

func (t WSTransport) path() string {
	if t.Path == "" {
		return "/ma"
	}
	return t.Path
}

func (t WSTransport) Dial(addr string) (Conn, error) {
	url := "ws://" + addr + t.path()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{c: c}, nil
}

func (t WSTransport) Serve(addr string, done <-chan struct{}, accept func(Conn)) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc(t.path(), func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accept(&wsConn{c: c})
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-done
		_ = srv.Close()
	}()
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := w.c.ReadMessage()
	return data, err
}

func (w *wsConn) WriteMessage(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteMessage(websocket.BinaryMessage, p)
}

func (w *wsConn) Close() error { return w.c.Close() }

// TCPComm is the TCP(/websocket)-backed Comm implementation (spec.md
// §4.8). Each ordered (sender, receiver) pair uses one Conn, dialed
// lazily by the sender against the receiver's listen address; the
// receiver's accept loop tags each inbound Conn with the sender's agent
// ID via a 4-byte handshake frame sent immediately after connecting, then
// reads frames from it into the shared inbound stream — giving FIFO
// per-pair delivery (spec.md §5) without a central broker.
type TCPComm struct {
	self      int
	transport Transport
	addrs     map[int]string // peer agent ID -> that peer's listen address
	ring      []int

	mu      sync.Mutex
	outConn map[int]Conn
	closed  bool

	inbound chan peerMsg
	wake    chan struct{}
	done    chan struct{}

	// stats backs the debug/introspection endpoint (SPEC_FULL.md §4.12:
	// "serves a live view of each agent's open-list size and message
	// counters"). Sent/Received are updated by this Comm; OpenListSize is
	// supplied by the caller via SetOpenListSizeFunc.
	stats           Stats
	openListSizeFn  func() int
	statsMu         sync.Mutex
}

// Stats is the snapshot served by the debug endpoint.
type Stats struct {
	AgentID      int   `json:"agent_id"`
	Sent         int64 `json:"sent"`
	Received     int64 `json:"received"`
	OpenListSize int   `json:"open_list_size"`
}

// NewTCPComm builds a TCPComm for agent self, dialing addrs[peer] to reach
// peer. It does not listen: the caller must call Serve with the listen
// address in a goroutine to begin accepting inbound connections.
func NewTCPComm(self int, transport Transport, addrs map[int]string) *TCPComm {
	// Sorted ascending so every agent derives the identical ring order
	// from its own addrs map, regardless of Go's randomized map
	// iteration order: SendInRing only forms one consistent ring if every
	// participant agrees on the sequence (spec.md §4.8, "Termination").
	ring := make([]int, 0, len(addrs)+1)
	ring = append(ring, self)
	for id := range addrs {
		ring = append(ring, id)
	}
	sort.Ints(ring)
	return &TCPComm{
		self:      self,
		transport: transport,
		addrs:     addrs,
		ring:      ring,
		outConn:   make(map[int]Conn),
		inbound:   make(chan peerMsg, 64),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		stats:     Stats{AgentID: self},
	}
}

// SetOpenListSizeFunc wires the live open-list-size reporter used by the
// debug endpoint.
func (c *TCPComm) SetOpenListSizeFunc(f func() int) {
	c.statsMu.Lock()
	c.openListSizeFn = f
	c.statsMu.Unlock()
}

// Serve accepts inbound connections on listenAddr until the TCPComm is
// closed. Run in its own goroutine.
func (c *TCPComm) Serve(listenAddr string) error {
	return c.transport.Serve(listenAddr, c.done, func(conn Conn) {
		go c.readLoop(conn)
	})
}

// readLoop consumes the 4-byte sender-ID handshake frame, then forwards
// every subsequent frame into the shared inbound channel tagged with that
// sender.
func (c *TCPComm) readLoop(conn Conn) {
	hello, err := conn.ReadMessage()
	if err != nil || len(hello) < 4 {
		_ = conn.Close()
		return
	}
	from := int(int32(binary.LittleEndian.Uint32(hello)))
	for {
		body, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.statsMu.Lock()
		c.stats.Received++
		c.statsMu.Unlock()
		select {
		case c.inbound <- peerMsg{from: from, body: body}:
		case <-c.done:
			return
		}
	}
}

func (c *TCPComm) dial(peer int) (Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if conn, ok := c.outConn[peer]; ok {
		return conn, nil
	}
	addr, ok := c.addrs[peer]
	if !ok {
		return nil, ErrClosed
	}
	conn, err := c.transport.Dial(addr)
	if err != nil {
		return nil, err
	}
	var hello [4]byte
	binary.LittleEndian.PutUint32(hello[:], uint32(int32(c.self)))
	if err := conn.WriteMessage(hello[:]); err != nil {
		_ = conn.Close()
		return nil, err
	}
	c.outConn[peer] = conn
	return conn, nil
}

func (c *TCPComm) Self() int { return c.self }

func (c *TCPComm) SendTo(peer int, msg []byte) error {
	conn, err := c.dial(peer)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(msg); err != nil {
		return err
	}
	c.statsMu.Lock()
	c.stats.Sent++
	c.statsMu.Unlock()
	return nil
}

func (c *TCPComm) SendToAll(msg []byte) error {
	for peer := range c.addrs {
		if err := c.SendTo(peer, msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *TCPComm) SendInRing(msg []byte) error {
	next := ringNext(c.ring, c.self)
	if next < 0 {
		return nil
	}
	return c.SendTo(next, msg)
}

func (c *TCPComm) Recv() (msg []byte, from int, ok bool) {
	select {
	case m := <-c.inbound:
		return m.body, m.from, true
	default:
		return nil, 0, false
	}
}

func (c *TCPComm) RecvBlock() (msg []byte, from int, err error) {
	select {
	case m := <-c.inbound:
		return m.body, m.from, nil
	case <-c.wake:
		return nil, 0, nil
	case <-c.done:
		return nil, 0, ErrClosed
	}
}

func (c *TCPComm) RecvBlockTimeout(d time.Duration) (msg []byte, from int, err error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m := <-c.inbound:
		return m.body, m.from, nil
	case <-c.wake:
		return nil, 0, nil
	case <-timer.C:
		return nil, 0, ErrTimeout
	case <-c.done:
		return nil, 0, ErrClosed
	}
}

func (c *TCPComm) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *TCPComm) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	for _, conn := range c.outConn {
		_ = conn.Close()
	}
	return nil
}

// StatsSnapshot returns the current debug-endpoint snapshot.
func (c *TCPComm) StatsSnapshot() Stats {
	c.statsMu.Lock()
	s := c.stats
	fn := c.openListSizeFn
	c.statsMu.Unlock()
	if fn != nil {
		s.OpenListSize = fn()
	}
	return s
}

// ServeDebug upgrades connections on listenAddr+path to a websocket that
// periodically pushes JSON Stats snapshots, the "live view of each
// agent's open-list size and message counters" (SPEC_FULL.md §4.12). Run
// in its own goroutine; returns when the TCPComm is closed.
func (c *TCPComm) ServeDebug(listenAddr, path string, interval time.Duration) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				if err := ws.WriteJSON(c.StatsSnapshot()); err != nil {
					return
				}
			}
		}
	})
	srv := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		<-c.done
		_ = srv.Close()
	}()
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
