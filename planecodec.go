package milimg

import (
	"context"
	"image"
)

// Quality bounds for EncodePlane. Quality follows the AV1 quantizer
// convention: 0 is the highest quality, 63 the smallest output.
const (
	QualityBest  = 0
	QualityWorst = 63
)

// PlaneCodec compresses and decompresses a single still frame. A milimg
// container stores one payload per plane, so the backend never sees more
// than one frame at a time.
//
// Implementations must be safe for concurrent use and must return decoded
// frames with bounds anchored at (0,0). DecodePlane treats a zero-length
// payload as "no plane" and returns (nil, nil); every other failure is a
// *CodecError. Contexts are honored where the backend supports cancellation.
type PlaneCodec interface {
	EncodePlane(ctx context.Context, frame *image.NRGBA, quality int) ([]byte, error)
	DecodePlane(ctx context.Context, payload []byte) (*image.NRGBA, error)
}

func clampQuality(q int) int {
	if q < QualityBest {
		return QualityBest
	}
	if q > QualityWorst {
		return QualityWorst
	}
	return q
}
