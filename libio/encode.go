package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pierrec/lz4/v4"
)

// EncodeFloatImage writes img in the cache format. With
// FloatImageCompressionFixedPoint16Lz4 every channel is quantized to
// 16-bit fixed point over its own value range and the result is LZ4
// compressed; decoded radiance maps shrink to well under half size.
func EncodeFloatImage(w io.Writer, img *FloatImage, compression FloatImageCompression) (err error) {
	var bw *BinaryWriter
	var ok bool

	if bw, ok = w.(*BinaryWriter); !ok {
		bw = &BinaryWriter{
			Dst:   w,
			Order: binary.LittleEndian,
		}

		defer func() {
			if bw.Err != nil {
				if err == nil {
					err = bw.Err
				} else {
					err = fmt.Errorf("%v: %w", err, bw.Err)
				}
			}
		}()
	}

	header := FloatImageHeader{
		Check:       MagicNumberF32,
		Version:     F32Version1_000_000,
		Width:       uint32(img.Width),
		Height:      uint32(img.Height),
		Channels:    uint8(img.Channels),
		Compression: compression,
	}

	if !bw.WriteRef(&header) {
		return fmt.Errorf("could not write f32 header: %w", bw.Err)
	}

	switch compression {
	case FloatImageCompressionNone:
		if !bw.WriteRef(img.Pix) {
			return fmt.Errorf("could not write f32 pixels: %w", bw.Err)
		}
	case FloatImageCompressionFixedPoint16Lz4:
		data, err := compressFixedPoint16(img.Channels, img.Count(), img.Pix)
		if err != nil {
			return fmt.Errorf("could not compress f32 pixels: %w", err)
		}
		lzw := lz4.NewWriter(bw.Dst)
		lzw.Apply(lz4.CompressionLevelOption(lz4.Fast))
		if _, err := lzw.Write(data); err != nil {
			return fmt.Errorf("could not write f32 encoded pixels: %w", err)
		}
		if err := lzw.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("f32 compression id %d unsupported", compression)
	}

	return nil
}

func compressFixedPoint16(channels int, count int, pix []float32) ([]byte, error) {
	rangeBytes := 4 * 2 * channels
	dataBytes := count * channels * 2
	buf := bytes.NewBuffer(make([]byte, 0, rangeBytes+dataBytes))
	bw := &BinaryWriter{Order: binary.LittleEndian, Dst: buf}
	for ch := 0; ch < channels; ch++ {
		compressChannelFixedPoint16(channels, count, pix, bw, ch)
		if bw.Err != nil {
			return nil, bw.Err
		}
	}
	return buf.Bytes(), nil
}

func compressChannelFixedPoint16(channels int, count int, pix []float32, bw *BinaryWriter, ch int) {
	var min, max float32 = math32.Inf(1), math32.Inf(-1)

	for i := 0; i < count; i++ {
		v := pix[i*channels+ch]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	bw.WriteUInt32(math32.Float32bits(min))
	bw.WriteUInt32(math32.Float32bits(max))

	r := max - min
	for i := 0; i < count; i++ {
		flt := pix[i*channels+ch]
		var fix uint16
		// a flat channel has no range to quantize over
		if r > 0 {
			fix = uint16(((flt - min) / r) * 0xffff)
		}
		bw.WriteUInt16(fix)
	}
}
