package libhdr

import (
	"bufio"
	"fmt"
	"io"
)

// The per-channel encoding is only trusted for scanline lengths in this
// range: shorter lines could collide with a legitimate legacy pixel
// that happens to match the sentinel, longer ones do not fit the
// 15-bit packed length field.
const (
	minNewLen = 8
	maxNewLen = 0x7fff
)

func readRGBE(br *bufio.Reader) (rgbe, error) {
	var buf [4]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return rgbe{}, readErr(err)
	}
	return rgbe{buf[0], buf[1], buf[2], buf[3]}, nil
}

// decodeScanline fills exactly one row of pixels. The choice between
// the legacy whole-pixel encoding and the per-channel encoding is made
// once per scanline from the first four bytes.
func decodeScanline(br *bufio.Reader, line []RGB) error {
	if len(line) == 0 {
		return nil
	}

	p, err := readRGBE(br)
	if err != nil {
		return err
	}

	if len(line) >= minNewLen && len(line) <= maxNewLen && p.isNewFormatMarker() {
		return newDecrunch(br, line)
	}

	// The four bytes were a regular first pixel after all.
	line[0] = p.color()
	return oldDecrunch(br, line, 1)
}

// oldDecrunch decodes the legacy byte-interleaved encoding into
// line[filled:]. A (1,1,1,e) pixel repeats the previous pixel e<<shift
// times, where shift grows by 8 for each chained marker and resets on
// a literal pixel.
func oldDecrunch(br *bufio.Reader, line []RGB, filled int) error {
	shift := uint(0)

	for filled < len(line) {
		p, err := readRGBE(br)
		if err != nil {
			return err
		}

		if p.isOldRunMarker() {
			if filled == 0 {
				return fmt.Errorf("%w: run marker before first pixel", ErrRLE)
			}
			if shift >= 63 {
				return fmt.Errorf("%w: chained run length overflow", ErrRLE)
			}
			count := uint64(p.e) << shift
			if count > uint64(len(line)-filled) {
				return fmt.Errorf("%w: run of %d exceeds scanline", ErrRLE, count)
			}
			prev := line[filled-1]
			for i := uint64(0); i < count; i++ {
				line[filled] = prev
				filled++
			}
			shift += 8
		} else {
			line[filled] = p.color()
			filled++
			shift = 0
		}
	}

	return nil
}

// newDecrunch decodes the per-channel adaptive encoding: four
// independent run-length byte streams, one full channel plane at a
// time, the shared exponent plane last.
func newDecrunch(br *bufio.Reader, line []RGB) error {
	for plane := 0; plane < 4; plane++ {
		if err := decrunchPlane(br, line, plane); err != nil {
			return err
		}
	}
	return nil
}

func decrunchPlane(br *bufio.Reader, line []RGB, plane int) error {
	index := 0
	for index < len(line) {
		code, err := br.ReadByte()
		if err != nil {
			return readErr(err)
		}

		if code > 128 {
			// run
			val, err := br.ReadByte()
			if err != nil {
				return readErr(err)
			}
			count := int(code & 127)
			if count > len(line)-index {
				return fmt.Errorf("%w: channel run exceeds scanline", ErrRLE)
			}
			for i := 0; i < count; i++ {
				writeChannel(&line[index], plane, val)
				index++
			}
		} else {
			// literal run, length zero is a legal no-op
			left := int(code)
			if left > len(line)-index {
				return fmt.Errorf("%w: channel literal exceeds scanline", ErrRLE)
			}
			for left > 0 {
				// Copy straight out of the source's buffer instead of
				// going byte by byte.
				buf, err := peekSome(br, left)
				if err != nil {
					return err
				}
				for _, val := range buf {
					writeChannel(&line[index], plane, val)
					index++
				}
				if _, err := br.Discard(len(buf)); err != nil {
					return readErr(err)
				}
				left -= len(buf)
			}
		}
	}
	return nil
}

// peekSome returns at least one buffered byte without consuming it,
// at most max bytes.
func peekSome(br *bufio.Reader, max int) ([]byte, error) {
	n := br.Buffered()
	if n == 0 {
		if _, err := br.Peek(1); err != nil {
			return nil, readErr(err)
		}
		n = br.Buffered()
	}
	if n > max {
		n = max
	}
	return br.Peek(n)
}

func writeChannel(px *RGB, plane int, val byte) {
	switch plane {
	case 0:
		px.R = float32(val)
	case 1:
		px.G = float32(val)
	case 2:
		px.B = float32(val)
	default:
		px.applyExposure(val)
	}
}
