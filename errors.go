package milimg

import "fmt"

// The error types below are the full failure taxonomy of the package. Callers
// should branch with errors.As rather than matching message strings.

// FormatError reports a malformed container: bad magic, truncated header or
// payload, or a serialize call with an inconsistent version/payload pairing.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "milimg: " + e.Reason
}

// UnsupportedVersionError reports a container whose version field is outside
// the known set {0, 1}.
type UnsupportedVersionError struct {
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("milimg: unsupported version %d", e.Version)
}

// DimensionMismatchError reports color and alpha planes of different sizes.
type DimensionMismatchError struct {
	ColorWidth, ColorHeight int
	AlphaWidth, AlphaHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("milimg: plane dimensions differ: color %dx%d, alpha %dx%d",
		e.ColorWidth, e.ColorHeight, e.AlphaWidth, e.AlphaHeight)
}

// CodecError reports a failure inside a plane or raster codec backend.
type CodecError struct {
	Op    string
	Cause error
}

func (e *CodecError) Error() string {
	if e.Cause == nil {
		return "milimg: " + e.Op + " failed"
	}
	return "milimg: " + e.Op + ": " + e.Cause.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Cause
}

// DecodeError reports that the decode pipeline could not produce a usable
// color frame. A failed alpha frame is not a DecodeError; the pipeline falls
// back to color-only output instead.
type DecodeError struct {
	Stage string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Cause == nil {
		return "milimg: could not decode " + e.Stage
	}
	return "milimg: could not decode " + e.Stage + ": " + e.Cause.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
