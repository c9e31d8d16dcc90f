package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pierrec/lz4/v4"
)

// DecodeFloatImage reads an image in the cache format written by
// EncodeFloatImage.
func DecodeFloatImage(r io.Reader) (img *FloatImage, err error) {
	var br *BinaryReader
	var ok bool

	if br, ok = r.(*BinaryReader); !ok {
		br = &BinaryReader{
			Src:   r,
			Order: binary.LittleEndian,
		}

		defer func() {
			if br.Err != nil {
				if err == nil {
					err = br.Err
				} else {
					err = fmt.Errorf("%v: %w", err, br.Err)
				}
			}
		}()
	}

	header := FloatImageHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected f32 header; byte 0x%08x", br.LastIndex)
	}

	if header.Check != MagicNumberF32 {
		return nil, fmt.Errorf("f32 header is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.Version != F32Version1_000_000 {
		return nil, fmt.Errorf("f32 version %d unsupported; byte 0x%08x", header.Version, br.LastIndex)
	}

	channels := int(header.Channels)
	count, total, err := pixelCount(int(header.Width), int(header.Height), channels)
	if err != nil {
		return nil, fmt.Errorf("%w; byte 0x%08x", err, br.LastIndex)
	}

	var data []float32

	switch header.Compression {
	case FloatImageCompressionNone:
		data = make([]float32, total)
		br.ReadRef(data)
		err = br.Err
	case FloatImageCompressionFixedPoint16Lz4:
		rangeBytes := 4 * 2 * channels
		if total > (maxInt-rangeBytes)/2 {
			return nil, fmt.Errorf("f32 pixel data of %dx%dx%d does not fit in memory; byte 0x%08x",
				header.Width, header.Height, channels, br.LastIndex)
		}
		dataBytes := total * 2
		buf := make([]byte, rangeBytes+dataBytes)
		lzr := lz4.NewReader(br.Src)
		_, err = io.ReadFull(lzr, buf)
		if err != nil {
			break
		}
		data, err = decompressFixedPoint16(channels, count, buf)
	default:
		return nil, fmt.Errorf("f32 compression id %d unsupported; byte 0x%08x", header.Compression, br.LastIndex)
	}

	if err != nil {
		return nil, fmt.Errorf("could not decompress f32 pixels: %w", err)
	}

	return NewFloatImage(data, channels, int(header.Width), int(header.Height)), nil
}

const maxInt = int(^uint(0) >> 1)

// pixelCount validates header dimensions before any allocation,
// a corrupt header must fail cleanly instead of overflowing.
func pixelCount(width, height, channels int) (count, total int, err error) {
	// on 32-bit platforms the uint32 header fields can convert negative
	if width < 0 || height < 0 {
		return 0, 0, fmt.Errorf("f32 pixel count of %dx%d overflows", width, height)
	}
	if width != 0 && height > maxInt/width {
		return 0, 0, fmt.Errorf("f32 pixel count of %dx%d overflows", width, height)
	}
	count = width * height
	if channels != 0 && count > maxInt/channels {
		return 0, 0, fmt.Errorf("f32 value count of %dx%dx%d overflows", width, height, channels)
	}
	return count, count * channels, nil
}

func decompressFixedPoint16(channels, count int, data []byte) ([]float32, error) {
	result := make([]float32, count*channels)
	br := &BinaryReader{
		Src:   bytes.NewReader(data),
		Order: binary.LittleEndian,
	}
	for ch := 0; ch < channels; ch++ {
		decompressChannelFixedPoint16(channels, count, result, br, ch)
		if br.Err != nil {
			return nil, br.Err
		}
	}
	return result, nil
}

func decompressChannelFixedPoint16(channels, count int, pix []float32, br *BinaryReader, ch int) {
	var imin, imax uint32
	br.ReadUInt32(&imin)
	br.ReadUInt32(&imax)

	min := math32.Float32frombits(imin)
	max := math32.Float32frombits(imax)

	data := make([]uint16, count)
	br.ReadRef(data)

	r := max - min
	for i := 0; i < count; i++ {
		fix := data[i]
		flt := (float32(fix)/0xffff)*r + min
		pix[i*channels+ch] = flt
	}
}
