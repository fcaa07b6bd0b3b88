package milimg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func buildContainer(t *testing.T, version, w, h uint32, color, alpha []byte) []byte {
	t.Helper()
	data, err := SerializeContainer(version, w, h, color, alpha)
	if err != nil {
		t.Fatalf("SerializeContainer: %v", err)
	}
	return data
}

func TestContainer_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name    string
		version uint32
		w, h    uint32
		color   []byte
		alpha   []byte
	}{
		{name: "v0", version: VersionOpaque, w: 640, h: 480, color: []byte{1, 2, 3, 4, 5}},
		{name: "v1", version: VersionAlpha, w: 16, h: 9, color: []byte{0xAA, 0xBB}, alpha: []byte{0xCC}},
		{name: "v1_empty_alpha", version: VersionAlpha, w: 1, h: 1, color: []byte{9}, alpha: []byte{}},
		{name: "v0_empty_color", version: VersionOpaque, w: 2, h: 2, color: nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data := buildContainer(t, tc.version, tc.w, tc.h, tc.color, tc.alpha)

			h, err := ParseContainer(data)
			if err != nil {
				t.Fatalf("ParseContainer: %v", err)
			}
			if h.Version != tc.version || h.Width != tc.w || h.Height != tc.h {
				t.Fatalf("header mismatch: got %d %dx%d, want %d %dx%d",
					h.Version, h.Width, h.Height, tc.version, tc.w, tc.h)
			}
			if !bytes.Equal(h.Color, tc.color) {
				t.Fatalf("color payload mismatch: got %v want %v", h.Color, tc.color)
			}
			if !bytes.Equal(h.Alpha, tc.alpha) {
				t.Fatalf("alpha payload mismatch: got %v want %v", h.Alpha, tc.alpha)
			}

			// Serializing the parsed header must reproduce the input bytes.
			again, err := h.Serialize()
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if !bytes.Equal(again, data) {
				t.Fatalf("re-serialized container differs from original")
			}
		})
	}
}

func TestContainer_Layout(t *testing.T) {
	data := buildContainer(t, VersionAlpha, 3, 2, []byte{0xDE, 0xAD}, []byte{0xBE})

	want := []byte("Milimg00")
	want = binary.BigEndian.AppendUint32(want, 1) // version
	want = binary.BigEndian.AppendUint32(want, 3) // width
	want = binary.BigEndian.AppendUint32(want, 2) // height
	want = binary.BigEndian.AppendUint64(want, 2) // color size
	want = append(want, 0xDE, 0xAD)
	want = binary.BigEndian.AppendUint64(want, 1) // alpha size
	want = append(want, 0xBE)

	if !bytes.Equal(data, want) {
		t.Fatalf("wire layout mismatch:\n got %x\nwant %x", data, want)
	}
}

func TestParseContainer_InvalidMagic(t *testing.T) {
	data := buildContainer(t, VersionOpaque, 1, 1, []byte{1}, nil)
	copy(data, "Milimg01")

	var ferr *FormatError
	if _, err := ParseContainer(data); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError, got %v", err)
	}

	// A buffer shorter than the magic is rejected the same way.
	if _, err := ParseContainer([]byte("Mili")); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for short buffer, got %v", err)
	}
}

func TestParseContainer_UnsupportedVersion(t *testing.T) {
	data := buildContainer(t, VersionOpaque, 1, 1, []byte{1}, nil)
	binary.BigEndian.PutUint32(data[8:12], 2)

	var verr *UnsupportedVersionError
	if _, err := ParseContainer(data); !errors.As(err, &verr) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
	if verr.Version != 2 {
		t.Fatalf("error carries version %d, want 2", verr.Version)
	}
}

func TestParseContainer_TruncatedPayload(t *testing.T) {
	var ferr *FormatError

	// Declares 1000 color bytes but provides only 10.
	data := buildContainer(t, VersionOpaque, 4, 4, bytes.Repeat([]byte{7}, 10), nil)
	binary.BigEndian.PutUint64(data[20:28], 1000)
	if _, err := ParseContainer(data); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for truncated color payload, got %v", err)
	}

	// Same for the alpha payload.
	data = buildContainer(t, VersionAlpha, 4, 4, []byte{1}, []byte{2, 3})
	binary.BigEndian.PutUint64(data[29:37], 99)
	if _, err := ParseContainer(data); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for truncated alpha payload, got %v", err)
	}

	// Header cut off mid-field.
	if _, err := ParseContainer(data[:14]); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for truncated header, got %v", err)
	}
}

func TestParseContainer_OversizedPayloadLength(t *testing.T) {
	data := buildContainer(t, VersionOpaque, 1, 1, []byte{1}, nil)
	binary.BigEndian.PutUint64(data[20:28], 1<<63)

	var ferr *FormatError
	if _, err := ParseContainer(data); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for oversized length, got %v", err)
	}
}

func TestParseContainer_IgnoresTrailingBytes(t *testing.T) {
	data := buildContainer(t, VersionOpaque, 1, 1, []byte{1, 2, 3}, nil)
	data = append(data, 0xFF, 0xFF, 0xFF)

	h, err := ParseContainer(data)
	if err != nil {
		t.Fatalf("ParseContainer: %v", err)
	}
	if !bytes.Equal(h.Color, []byte{1, 2, 3}) {
		t.Fatalf("color payload corrupted by trailing bytes: %v", h.Color)
	}
}

func TestSerializeContainer_VersionPayloadMismatch(t *testing.T) {
	var ferr *FormatError
	if _, err := SerializeContainer(VersionOpaque, 1, 1, []byte{1}, []byte{2}); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for v0 with alpha, got %v", err)
	}
	if _, err := SerializeContainer(VersionAlpha, 1, 1, []byte{1}, nil); !errors.As(err, &ferr) {
		t.Fatalf("expected FormatError for v1 without alpha, got %v", err)
	}

	var verr *UnsupportedVersionError
	if _, err := SerializeContainer(7, 1, 1, []byte{1}, nil); !errors.As(err, &verr) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
}
