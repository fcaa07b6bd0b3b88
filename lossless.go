package milimg

import (
	"context"
	"encoding/binary"
	"image"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// LosslessCodec is a zstd-backed plane codec that stores raw pixel rows
// verbatim. It reproduces frames bit-exactly, which the AV1 backend cannot,
// at the cost of larger payloads. The container layout is identical either
// way; only the payload bytes differ.
//
// Payload layout: 4-byte width, 4-byte height (both big-endian), then the
// zstd-compressed row-major RGBA samples.
type LosslessCodec struct{}

const losslessHeaderSize = 8

func (LosslessCodec) EncodePlane(ctx context.Context, frame *image.NRGBA, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CodecError{Op: "lossless encode", Cause: err}
	}
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, &CodecError{Op: "lossless encode", Cause: errors.Errorf("unsupported dimensions %dx%d", w, h)}
	}

	// Drop any stride padding so the payload is pure samples.
	raw := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		raw = append(raw, row...)
	}

	out := make([]byte, losslessHeaderSize, losslessHeaderSize+len(raw)/2)
	binary.BigEndian.PutUint32(out[0:4], uint32(w))
	binary.BigEndian.PutUint32(out[4:8], uint32(h))

	enc := zstdEncPool.Get().(*zstd.Encoder)
	out = enc.EncodeAll(raw, out)
	zstdEncPool.Put(enc)
	return out, nil
}

func (LosslessCodec) DecodePlane(ctx context.Context, payload []byte) (*image.NRGBA, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &CodecError{Op: "lossless decode", Cause: err}
	}
	if len(payload) < losslessHeaderSize {
		return nil, &CodecError{Op: "lossless decode", Cause: errors.New("payload shorter than dimension header")}
	}

	w := binary.BigEndian.Uint32(payload[0:4])
	h := binary.BigEndian.Uint32(payload[4:8])
	if w == 0 || h == 0 || uint64(w)*uint64(h) > math.MaxInt32/4 {
		return nil, &CodecError{Op: "lossless decode", Cause: errors.Errorf("implausible dimensions %dx%d", w, h)}
	}

	dec := zstdDecPool.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(payload[losslessHeaderSize:], nil)
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, &CodecError{Op: "lossless decode", Cause: err}
	}
	if len(raw) != int(w)*int(h)*4 {
		return nil, &CodecError{Op: "lossless decode", Cause: errors.Errorf("sample count %d does not match %dx%d", len(raw), w, h)}
	}

	frame := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(frame.Pix, raw)
	return frame, nil
}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}
