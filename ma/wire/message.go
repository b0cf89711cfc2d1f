package wire

// Type identifies which of the four recognized inter-agent message kinds
// a record holds (spec.md §6: "Recognized message types: public_state,
// trace_path, snapshot, terminate").
type Type uint8

const (
	TypePublicState Type = iota
	TypeTracePath
	TypeSnapshot
	TypeTerminate
)

// optional-field presence bits for the PublicState/Snapshot bodies, packed
// into the header byte alongside BitBigEndian (spec.md §6: "an explicit
// bit-header describing which optional fields are present").
const (
	bitHasCost Width = 1 << iota
	bitHasHeur
	bitHasAck
	bitHasSnapCost
	bitHasStateBuf
)

// Width names the optional-field presence bitmask type, distinct from
// HeaderBit (the endianness flag) since a record's header byte carries
// both: the top bit is BitBigEndian, the low bits are field-presence.
type Width = uint8

// PublicState is the message a kernel emits on every expansion to the
// peers listed in the generating operator's SendAgents set (spec.md §4.8,
// §6): "public_state {state_buf, state_id, cost, heur}".
type PublicState struct {
	StateBuf []uint32 // the packed public sub-state buffer
	StateID  int64    // sender's local StateID, for Ack/trace correlation
	Cost     int64    // g-value at the sender; HasCost reports presence
	Heur     int64    // h-value at the sender; HasHeur reports presence
	HasCost  bool
	HasHeur  bool
}

// Encode serializes p into a full record: header byte, type byte, body.
func (p *PublicState) Encode() []byte {
	w := NewWriter()
	var header Width
	if p.HasCost {
		header |= bitHasCost
	}
	if p.HasHeur {
		header |= bitHasHeur
	}
	if SenderIsBigEndian() {
		header |= byte(BitBigEndian)
	}
	w.Byte(header)
	w.Byte(byte(TypePublicState))
	w.Uint32Array(p.StateBuf)
	w.Int64(p.StateID)
	if p.HasCost {
		w.Int64(p.Cost)
	}
	if p.HasHeur {
		w.Int64(p.Heur)
	}
	return w.Bytes()
}

// DecodePublicState decodes a PublicState body. header and typeByte must
// already have been stripped by the caller (see DecodeEnvelope).
func DecodePublicState(header byte, body []byte) (*PublicState, error) {
	r := NewReader(body, DecodeHeaderEndian(header))
	buf, err := r.Uint32Array()
	if err != nil {
		return nil, err
	}
	id, err := r.Int64()
	if err != nil {
		return nil, err
	}
	p := &PublicState{StateBuf: buf, StateID: id}
	if header&bitHasCost != 0 {
		if p.Cost, err = r.Int64(); err != nil {
			return nil, err
		}
		p.HasCost = true
	}
	if header&bitHasHeur != 0 {
		if p.Heur, err = r.Int64(); err != nil {
			return nil, err
		}
		p.HasHeur = true
	}
	return p, nil
}

// bitFinal marks a TracePath record as the completed plan broadcast
// rather than an in-progress forward to the next owning agent.
const bitFinal Width = 1 << 5

// TracePath is forwarded during distributed path reconstruction: spec.md
// §6 "trace_path {path, state_id, init_agent}", §4.8 "Path tracing".
//
// OpNames carries operator *names* rather than local operator IDs: each
// agent's projected Problem has its own Operators index space, so a
// numeric OpID from one agent's trace segment would be meaningless to
// the next agent in the forwarding chain. Names are globally stable
// across every agent's projection (spec.md §3, Operator "name").
type TracePath struct {
	OpNames   []string
	StateID   int64 // the predecessor StateID to continue tracing from, in the receiving agent's own pool
	InitAgent int64 // the agent that originated the snapshot/trace
	Final     bool  // true once the trace has reached a true root and is being broadcast as the solution
}

func (t *TracePath) Encode() []byte {
	w := NewWriter()
	var header Width
	if t.Final {
		header |= bitFinal
	}
	if SenderIsBigEndian() {
		header |= byte(BitBigEndian)
	}
	w.Byte(header)
	w.Byte(byte(TypeTracePath))
	w.Uint32(uint32(len(t.OpNames)))
	for _, name := range t.OpNames {
		w.String(name)
	}
	w.Int64(t.StateID)
	w.Int64(t.InitAgent)
	return w.Bytes()
}

func DecodeTracePath(header byte, body []byte) (*TracePath, error) {
	r := NewReader(body, DecodeHeaderEndian(header))
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	t := &TracePath{Final: header&bitFinal != 0}
	for i := uint32(0); i < n; i++ {
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		t.OpNames = append(t.OpNames, name)
	}
	if t.StateID, err = r.Int64(); err != nil {
		return nil, err
	}
	if t.InitAgent, err = r.Int64(); err != nil {
		return nil, err
	}
	return t, nil
}

// SnapshotKind distinguishes the four phases of the solution-verification
// protocol (spec.md §4.8, §6): "snapshot {type, token, ack?, cost?,
// state_buf?} (init / mark / response / final)".
type SnapshotKind uint8

const (
	SnapshotInit SnapshotKind = iota
	SnapshotMark
	SnapshotResponse
	SnapshotFinal
)

// Snapshot is one message of the global-consistency protocol.
type Snapshot struct {
	Kind     SnapshotKind
	Token    int64
	Ack      bool
	HasAck   bool
	Cost     int64
	HasCost  bool
	StateBuf []uint32
	HasBuf   bool
}

func (s *Snapshot) Encode() []byte {
	w := NewWriter()
	var header Width
	if s.HasAck {
		header |= bitHasAck
	}
	if s.HasCost {
		header |= bitHasSnapCost
	}
	if s.HasBuf {
		header |= bitHasStateBuf
	}
	if SenderIsBigEndian() {
		header |= byte(BitBigEndian)
	}
	w.Byte(header)
	w.Byte(byte(TypeSnapshot))
	w.Byte(byte(s.Kind))
	w.Int64(s.Token)
	if s.HasAck {
		ackByte := byte(0)
		if s.Ack {
			ackByte = 1
		}
		w.Byte(ackByte)
	}
	if s.HasCost {
		w.Int64(s.Cost)
	}
	if s.HasBuf {
		w.Uint32Array(s.StateBuf)
	}
	return w.Bytes()
}

func DecodeSnapshot(header byte, body []byte) (*Snapshot, error) {
	r := NewReader(body, DecodeHeaderEndian(header))
	kindByte, err := r.Byte()
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Kind: SnapshotKind(kindByte)}
	if s.Token, err = r.Int64(); err != nil {
		return nil, err
	}
	if header&bitHasAck != 0 {
		b, err := r.Byte()
		if err != nil {
			return nil, err
		}
		s.Ack = b != 0
		s.HasAck = true
	}
	if header&bitHasSnapCost != 0 {
		if s.Cost, err = r.Int64(); err != nil {
			return nil, err
		}
		s.HasCost = true
	}
	if header&bitHasStateBuf != 0 {
		if s.StateBuf, err = r.Uint32Array(); err != nil {
			return nil, err
		}
		s.HasBuf = true
	}
	return s, nil
}

// TerminateKind distinguishes the ring-based two-phase termination's two
// message kinds (spec.md §4.8, "Termination").
type TerminateKind uint8

const (
	TerminateRequest TerminateKind = iota
	TerminateFinal
)

// Terminate is a ring-based termination-protocol message: spec.md §6
// "terminate {kind, agent}".
type Terminate struct {
	Kind  TerminateKind
	Agent int64
}

func (t *Terminate) Encode() []byte {
	w := NewWriter()
	var header Width
	if SenderIsBigEndian() {
		header |= byte(BitBigEndian)
	}
	w.Byte(header)
	w.Byte(byte(TypeTerminate))
	w.Byte(byte(t.Kind))
	w.Int64(t.Agent)
	return w.Bytes()
}

func DecodeTerminate(header byte, body []byte) (*Terminate, error) {
	r := NewReader(body, DecodeHeaderEndian(header))
	kindByte, err := r.Byte()
	if err != nil {
		return nil, err
	}
	agent, err := r.Int64()
	if err != nil {
		return nil, err
	}
	return &Terminate{Kind: TerminateKind(kindByte), Agent: agent}, nil
}

// Envelope is any decoded message, tagged by its Type.
type Envelope struct {
	Type        Type
	PublicState *PublicState
	TracePath   *TracePath
	Snapshot    *Snapshot
	Terminate   *Terminate
}

// DecodeEnvelope decodes the 2-byte header+type prefix common to every
// record and dispatches to the matching body decoder.
func DecodeEnvelope(buf []byte) (*Envelope, error) {
	if len(buf) < 2 {
		return nil, ErrTruncated
	}
	header := buf[0]
	typ := Type(buf[1])
	body := buf[2:]
	env := &Envelope{Type: typ}
	var err error
	switch typ {
	case TypePublicState:
		env.PublicState, err = DecodePublicState(header, body)
	case TypeTracePath:
		env.TracePath, err = DecodeTracePath(header, body)
	case TypeSnapshot:
		env.Snapshot, err = DecodeSnapshot(header, body)
	case TypeTerminate:
		env.Terminate, err = DecodeTerminate(header, body)
	default:
		return nil, ErrTruncated
	}
	if err != nil {
		return nil, err
	}
	return env, nil
}
