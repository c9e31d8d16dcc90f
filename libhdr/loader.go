// Package libhdr decodes Radiance HDR (.hdr, .pic) radiance maps into
// flat float32 RGB pixel data. Images can be loaded in one call or one
// scanline at a time into a caller-owned buffer.
package libhdr

import (
	"bufio"
	"fmt"
	"io"
)

var magic = [10]byte{'#', '?', 'R', 'A', 'D', 'I', 'A', 'N', 'C', 'E'}

// Loader holds a parsed header and the byte source positioned at the
// first scanline. It owns the source exclusively until the decode is
// done or abandoned.
type Loader struct {
	// Width of the image in pixels.
	Width int
	// Height of the image, i.e. the number of scanlines.
	Height int
	src    *bufio.Reader
}

// NewLoader verifies the magic signature and consumes the header from
// r. When r is not already a *bufio.Reader it is wrapped in one; the
// buffer then owns the bytes after the header, so callers must keep
// reading through the Loader.
func NewLoader(r io.Reader) (*Loader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var buf [10]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return nil, readErr(err)
	}
	if buf != magic {
		return nil, ErrFileFormat
	}

	width, height, err := parseHeader(br)
	if err != nil {
		return nil, err
	}

	return &Loader{Width: width, Height: height, src: br}, nil
}

// Scanlines switches the loader into streaming mode.
func (l *Loader) Scanlines() *ScanlineReader {
	return &ScanlineReader{Width: l.Width, Height: l.Height, src: l.src}
}

// LoadImage decodes all scanlines into a single Image, top row first.
// The pixel array is allocated once up front; each row is decoded
// directly into its slice of the array.
func (l *Loader) LoadImage() (*Image, error) {
	length, err := pixelCount(l.Width, l.Height)
	if err != nil {
		return nil, err
	}

	img := &Image{
		Width:  l.Width,
		Height: l.Height,
		Data:   make([]RGB, length),
	}

	if length != 0 {
		sc := l.Scanlines()
		for y := 0; y < img.Height; y++ {
			start := y * img.Width
			if err := sc.ReadScanline(img.Data[start : start+img.Width]); err != nil {
				return nil, err
			}
		}
	}

	return img, nil
}

func pixelCount(width, height int) (int, error) {
	if width != 0 && height > maxInt/width {
		return 0, fmt.Errorf("%w: pixel count overflow", ErrHeader)
	}
	return width * height, nil
}

// Load decodes an entire radiance map in one call. Trailing bytes after
// the last scanline are left unread, so images concatenated on one
// *bufio.Reader can be loaded back to back.
func Load(r io.Reader) (*Image, error) {
	l, err := NewLoader(r)
	if err != nil {
		return nil, err
	}
	return l.LoadImage()
}

// ScanlineReader decodes one scanline per call into a caller-supplied
// buffer, without any internal per-line allocation. The caller is
// responsible for stopping after Height calls.
type ScanlineReader struct {
	// Width of the image in pixels.
	Width int
	// Height of the image, i.e. the number of scanlines.
	Height int
	src    *bufio.Reader
}

// ReadScanline decodes the next row into the first Width entries of
// dst; a longer buffer is fine. When dst is shorter than Width the call
// fails with io.ErrShortBuffer before consuming any input. After any
// other failure the stream position is undefined and the reader must
// not be used again.
func (s *ScanlineReader) ReadScanline(dst []RGB) error {
	if len(dst) < s.Width {
		return fmt.Errorf("%w: buffer of %d for width %d", io.ErrShortBuffer, len(dst), s.Width)
	}
	return decodeScanline(s.src, dst[:s.Width])
}
