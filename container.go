package milimg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Magic is the 8-byte signature at the start of every milimg container.
const Magic = "Milimg00"

// Container versions. VersionAuto is an encode-side selector only and never
// appears on the wire.
const (
	VersionOpaque = 0 // color payload only
	VersionAlpha  = 1 // color payload followed by an alpha payload
	VersionAuto   = -1
)

// Header is the parsed milimg container.
//
// Wire layout, all integers big-endian:
//
//	offset 0   : 8 bytes  magic "Milimg00"
//	offset 8   : 4 bytes  version (u32)
//	offset 12  : 4 bytes  width (u32)
//	offset 16  : 4 bytes  height (u32)
//	offset 20  : 8 bytes  color payload size (u64)
//	offset 28  : N bytes  color payload
//	offset 28+N: [version 1 only] 8 bytes alpha payload size (u64), then the
//	             alpha payload
//
// Bytes past the last declared payload are ignored. Width and height describe
// both planes; the format carries a single pair of dimensions and decoding
// assumes the alpha plane matches the color plane.
type Header struct {
	Version uint32
	Width   uint32
	Height  uint32

	// Color and Alpha are views into the buffer given to ParseContainer, not
	// copies. Alpha is nil unless Version is VersionAlpha.
	Color []byte
	Alpha []byte
}

// byteReader is a sequential big-endian cursor over a byte slice. Every read
// is bounds-checked; a short buffer surfaces as an error instead of a panic.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("need %d bytes, have %d", n, r.remaining())
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *byteReader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ParseContainer reads a milimg container out of data. The returned header's
// payload slices alias data; callers that outlive the buffer must copy them.
func ParseContainer(data []byte) (*Header, error) {
	r := &byteReader{data: data}

	magic, err := r.bytes(len(Magic))
	if err != nil || string(magic) != Magic {
		return nil, &FormatError{Reason: "invalid magic number"}
	}

	version, err := r.uint32()
	if err != nil {
		return nil, &FormatError{Reason: "truncated header"}
	}
	if version != VersionOpaque && version != VersionAlpha {
		return nil, &UnsupportedVersionError{Version: version}
	}

	width, err := r.uint32()
	if err != nil {
		return nil, &FormatError{Reason: "truncated header"}
	}
	height, err := r.uint32()
	if err != nil {
		return nil, &FormatError{Reason: "truncated header"}
	}

	h := &Header{Version: version, Width: width, Height: height}

	if h.Color, err = r.payload("color"); err != nil {
		return nil, err
	}
	if version == VersionAlpha {
		if h.Alpha, err = r.payload("alpha"); err != nil {
			return nil, err
		}
	}

	// Trailing bytes beyond the last payload are deliberately not rejected.
	return h, nil
}

// payload reads an 8-byte length prefix followed by that many payload bytes.
func (r *byteReader) payload(name string) ([]byte, error) {
	size, err := r.uint64()
	if err != nil {
		return nil, &FormatError{Reason: "truncated " + name + " payload size"}
	}
	if size > math.MaxInt {
		return nil, &FormatError{Reason: fmt.Sprintf("%s payload size %d exceeds addressable memory", name, size)}
	}
	b, err := r.bytes(int(size))
	if err != nil {
		return nil, &FormatError{Reason: "truncated " + name + " payload"}
	}
	return b, nil
}

// SerializeContainer writes a milimg container for the given planes. The
// version must agree with the payloads supplied: VersionOpaque takes no alpha
// payload, VersionAlpha requires one.
func SerializeContainer(version, width, height uint32, color, alpha []byte) ([]byte, error) {
	switch version {
	case VersionOpaque:
		if alpha != nil {
			return nil, &FormatError{Reason: "version 0 container cannot carry an alpha payload"}
		}
	case VersionAlpha:
		if alpha == nil {
			return nil, &FormatError{Reason: "version 1 container requires an alpha payload"}
		}
	default:
		return nil, &UnsupportedVersionError{Version: version}
	}

	size := len(Magic) + 4 + 4 + 4 + 8 + len(color)
	if version == VersionAlpha {
		size += 8 + len(alpha)
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.WriteString(Magic)
	for _, v := range []uint32{version, width, height} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(buf, binary.BigEndian, uint64(len(color))); err != nil {
		return nil, err
	}
	buf.Write(color)
	if version == VersionAlpha {
		if err := binary.Write(buf, binary.BigEndian, uint64(len(alpha))); err != nil {
			return nil, err
		}
		buf.Write(alpha)
	}
	return buf.Bytes(), nil
}

// Serialize re-encodes the header and its payloads into container bytes.
func (h *Header) Serialize() ([]byte, error) {
	return SerializeContainer(h.Version, h.Width, h.Height, h.Color, h.Alpha)
}
