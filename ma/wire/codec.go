// Package wire implements the inter-agent message codec: a typed record
// format with an explicit bit-header describing which optional fields are
// present, fixed-width integers in machine endianness (with a header bit
// recording the sender's endianness so a receiver on a different machine
// byte-swaps), and length-prefixed arrays (spec.md §6, "Wire format").
//
// wire is deliberately free of any dependency on the root planit package:
// it only knows about bytes, bits, and plain Go integers/slices. Both the
// problem-file loader (planit.LoadProblem) and the ma/agent message codec
// build their typed records on top of these primitives, matching spec.md
// §6.1's note that the two are "both 'typed record with bit-header'
// formats".
package wire

import (
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/sys/cpu"
)

// ErrTruncated is returned when a Reader runs out of input mid-record.
var ErrTruncated = errors.New("wire: truncated record")

// nativeOrder is this process's machine byte order, following the
// teacher's cpu-feature-probing style (x/sys/cpu.X86.HasSSSE3 et al. in
// coregx-coregex/prefilter) generalized from "which instruction set is
// available" to "which byte order is native".
var nativeOrder binary.ByteOrder = func() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}()

// HeaderBit flags mark which optional fields a record carries, plus the
// sender's endianness (spec.md §6: "the top header bit distinguishing
// sender endianness so the receiver byte-swaps when different").
type HeaderBit uint8

const (
	// BitBigEndian is set when the sender encoded fixed-width integers in
	// big-endian order. Always the top (0x80) bit of a header byte.
	BitBigEndian HeaderBit = 0x80
)

// Writer accumulates an encoded record into a byte buffer. All fixed-width
// integers are written in this process's native order; SenderIsBigEndian
// reports the bit to set in a record's header.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// SenderIsBigEndian reports whether this process encodes big-endian, for
// setting BitBigEndian in a record's header byte.
func SenderIsBigEndian() bool { return cpu.IsBigEndian }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Byte appends a single byte (e.g. a header or message-type tag).
func (w *Writer) Byte(b byte) { w.buf = append(w.buf, b) }

// Uint32 appends a 32-bit integer in native order.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	nativeOrder.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Uint64 appends a 64-bit integer in native order.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	nativeOrder.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Int64 appends a signed 64-bit integer in native order.
func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

// RawBytes appends a 32-bit little-endian length prefix (spec.md §6:
// "arrays prefixed by a 32-bit little-endian length") followed by raw
// bytes. The length field itself is always little-endian regardless of
// the record's own native-order fields, matching the spec's wording
// exactly.
func (w *Writer) RawBytes(p []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
	w.buf = append(w.buf, lenBuf[:]...)
	w.buf = append(w.buf, p...)
}

// String appends a length-prefixed UTF-8 string.
func (w *Writer) String(s string) { w.RawBytes([]byte(s)) }

// Uint32Array appends a length-prefixed array of 32-bit native-order
// words, the representation used for packed state buffers.
func (w *Writer) Uint32Array(vals []uint32) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(vals)))
	w.buf = append(w.buf, lenBuf[:]...)
	for _, v := range vals {
		w.Uint32(v)
	}
}

// Int64Array appends a length-prefixed array of 64-bit native-order
// integers (e.g. an operator-ID path).
func (w *Writer) Int64Array(vals []int64) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(vals)))
	w.buf = append(w.buf, lenBuf[:]...)
	for _, v := range vals {
		w.Int64(v)
	}
}

// WriteTo writes the accumulated buffer to w2, implementing io.WriterTo so
// a record can be streamed directly to a comm transport.
func (w *Writer) WriteTo(w2 io.Writer) (int64, error) {
	n, err := w2.Write(w.buf)
	return int64(n), err
}

// Reader decodes a record previously produced by a Writer, byte-swapping
// fixed-width integers if the record's header indicates the sender used a
// different byte order than this process (spec.md §6).
type Reader struct {
	buf       []byte
	pos       int
	bigEndian bool // the *sender's* order, decoded from the header bit
}

// NewReader wraps buf for decoding. senderBigEndian is the sender's order, as
// recorded in the record's header bit (see DecodeHeaderEndian).
func NewReader(buf []byte, senderBigEndian bool) *Reader {
	return &Reader{buf: buf, bigEndian: senderBigEndian}
}

// DecodeHeaderEndian extracts the sender-endianness bit from a header
// byte.
func DecodeHeaderEndian(header byte) bool { return header&byte(BitBigEndian) != 0 }

func (r *Reader) order() binary.ByteOrder {
	if r.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Byte reads a single byte.
func (r *Reader) Byte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, ErrTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Uint32 reads a 32-bit integer, byte-swapping if the sender's order
// differs from this reader's interpretation.
func (r *Reader) Uint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := r.order().Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// Uint64 reads a 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := r.order().Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

// Int64 reads a signed 64-bit integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

func (r *Reader) arrayLen() (int, error) {
	if r.pos+4 > len(r.buf) {
		return 0, ErrTruncated
	}
	n := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return int(n), nil
}

// RawBytes reads a length-prefixed byte array.
func (r *Reader) RawBytes() ([]byte, error) {
	n, err := r.arrayLen()
	if err != nil {
		return nil, err
	}
	if r.pos+n > len(r.buf) {
		return nil, ErrTruncated
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() (string, error) {
	b, err := r.RawBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Uint32Array reads a length-prefixed array of 32-bit native-order words.
func (r *Reader) Uint32Array() ([]uint32, error) {
	n, err := r.arrayLen()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		v, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Int64Array reads a length-prefixed array of 64-bit native-order
// integers.
func (r *Reader) Int64Array() ([]int64, error) {
	n, err := r.arrayLen()
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		v, err := r.Int64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Remaining reports whether unread bytes remain.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }
