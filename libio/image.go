// Package libio provides pixel containers for decoded radiance maps
// and a compact binary cache format for them.
package libio

import (
	goimg "image"

	"github.com/chewxy/math32"
)

const MagicNumberF32 = 0x7da1f32c

type FloatImageVersion uint32

const (
	F32Version1_000_000 = FloatImageVersion(1_000_000)
)

type FloatImageCompression uint32

const (
	FloatImageCompressionNone = FloatImageCompression(iota)
	FloatImageCompressionFixedPoint16Lz4
)

// FloatImageHeader is the on-disk header of the cache format.
type FloatImageHeader struct {
	Check         uint32
	Version       FloatImageVersion
	Width, Height uint32
	Channels      uint8
	Compression   FloatImageCompression
	Unused        [14]uint8
}

type image struct {
	Channels      int
	Width, Height int
}

// Index returns the tuple index into the pixel data. The origin (0,0)
// is the top left, matching radiance scanline order.
func (img *image) Index(x, y int) int {
	return x*img.Channels + y*img.Channels*img.Width
}

func (img *image) Count() int {
	return img.Width * img.Height
}

type FloatImage struct {
	image
	Pix []float32
}

func NewFloatImage(pix []float32, channels int, width, height int) *FloatImage {
	return &FloatImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

// ToIntImage maps the linear float pixels to 8-bit with a gamma curve
// and linear scale, clamping to [0, 1].
func (img *FloatImage) ToIntImage(gamma, scale float32) *IntImage {
	pix := make([]uint8, len(img.Pix))

	for i := 0; i < len(img.Pix); i++ {
		pix[i] = uint8(tonemap(img.Pix[i], 1.0/gamma, scale) * 0xff)
	}

	return NewIntImage(pix, img.Channels, img.Width, img.Height)
}

func tonemap(value, gamma, scale float32) float32 {
	value = math32.Pow(value*scale, gamma)
	return math32.Min(math32.Max(0.0, value), 1.0)
}

type IntImage struct {
	image
	Pix []uint8
}

func NewIntImage(pix []uint8, channels int, width, height int) *IntImage {
	return &IntImage{
		Pix: pix,
		image: image{
			Channels: channels,
			Width:    width,
			Height:   height,
		},
	}
}

func (img *IntImage) ToRGBA() *goimg.RGBA {
	rgba := goimg.NewRGBA(goimg.Rect(0, 0, img.Width, img.Height))

	for i := 0; i < img.Count(); i++ {
		for c := 0; c < img.Channels && c < 4; c++ {
			rgba.Pix[i*4+c] = img.Pix[i*img.Channels+c]
		}
		if img.Channels < 4 {
			rgba.Pix[i*4+3] = 0xff
		}
	}

	return rgba
}
