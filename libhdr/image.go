package libhdr

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// RGB is a single decoded pixel with linear radiance values per channel.
// The three channels are contiguous in memory with no padding, so a
// []RGB can be reinterpreted as a flat []float32, see Image.Pix.
type RGB struct {
	R, G, B float32
}

// applyExposure folds the shared exponent byte into the mantissa
// channels: channel * 2^(e-128) / 255.
func (c *RGB) applyExposure(e byte) {
	d := math32.Ldexp(1.0/255.0, int(e)-128)
	c.R *= d
	c.G *= d
	c.B *= d
}

// rgbe is the 4-byte wire encoding of a pixel, three mantissas and a
// shared exponent. It only lives for the duration of one pixel decode.
type rgbe struct {
	r, g, b, e byte
}

// isOldRunMarker reports whether the pixel is the reserved
// all-ones-mantissa marker that repeats the previous pixel.
func (p rgbe) isOldRunMarker() bool {
	return p.r == 1 && p.g == 1 && p.b == 1
}

// isNewFormatMarker reports whether the pixel doubles as the sentinel
// that starts a per-channel encoded scanline. The low 15 bits of b and
// e carry the declared packed length.
func (p rgbe) isNewFormatMarker() bool {
	return p.r == 2 && p.g == 2 && p.b&0x80 == 0
}

func (p rgbe) color() RGB {
	c := RGB{R: float32(p.r), G: float32(p.g), B: float32(p.b)}
	c.applyExposure(p.e)
	return c
}

// Image is a fully decoded radiance map. Data is row-major with the top
// row first, len(Data) == Width*Height.
type Image struct {
	Width  int
	Height int
	Data   []RGB
}

// PixelOffset returns the index into Data for the pixel at (x, y).
func (img *Image) PixelOffset(x, y int) int {
	return y*img.Width + x
}

// Pixel returns the pixel at (x, y). Panics when out of bounds.
func (img *Image) Pixel(x, y int) RGB {
	return img.Data[img.PixelOffset(x, y)]
}

// Pix returns the pixel data as a flat float32 slice in R, G, B order,
// aliasing Data. The RGB layout makes this cast safe.
func (img *Image) Pix() []float32 {
	if len(img.Data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&img.Data[0])), 3*len(img.Data))
}
