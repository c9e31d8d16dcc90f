package libhdr

import (
	"errors"
	"io"
)

var (
	// ErrFileFormat is returned when the magic signature is missing.
	ErrFileFormat = errors.New("not a radiance hdr file")
	// ErrHeader is returned when the resolution line violates the
	// header grammar, including dimension overflow.
	ErrHeader = errors.New("invalid radiance hdr header")
	// ErrRLE is returned when the run-length structure of a scanline
	// would write outside its bounds, or repeats a pixel that does not
	// exist yet.
	ErrRLE = errors.New("invalid run-length encoding")
)

// readErr normalizes errors from the byte source so that a structure
// cut short always surfaces as io.ErrUnexpectedEOF, distinguishable
// from genuine source failures.
func readErr(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
