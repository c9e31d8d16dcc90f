package libhdr_test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"radhdr/libhdr"
)

func TestLoadOldFormatSinglePixel(t *testing.T) {
	data := []byte("#?RADIANCE\x00\n\n-Y 1 +X 1\n\xff\x00\xff\x80")
	img, err := libhdr.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 1 || img.Height != 1 {
		t.Fatalf("image is %dx%d, should be 1x1", img.Width, img.Height)
	}
	if img.Data[0] != (libhdr.RGB{R: 1, G: 0, B: 1}) {
		t.Errorf("pixel is %v, should be {1 0 1}", img.Data[0])
	}
}

func TestLoadOldFormatRun(t *testing.T) {
	data := []byte("#?RADIANCE\x00\n\n-Y 1 +X 2\n\xff\x00\xff\x80\x01\x01\x01\x01")
	img, err := libhdr.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	want := libhdr.RGB{R: 1, G: 0, B: 1}
	if img.Data[0] != want || img.Data[1] != want {
		t.Errorf("pixels are %v, should both be %v", img.Data, want)
	}
}

func TestLoadOldFormatTwoScanlines(t *testing.T) {
	data := []byte("#?RADIANCE\x00\n\n-Y 2 +X 2\n" +
		"\xff\x00\xff\x80\x01\x01\x01\x01" +
		"\x00\xff\x00\x80\x01\x01\x01\x01")
	img, err := libhdr.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	top := libhdr.RGB{R: 1, G: 0, B: 1}
	bottom := libhdr.RGB{R: 0, G: 1, B: 0}
	for x := 0; x < 2; x++ {
		if img.Pixel(x, 0) != top {
			t.Errorf("pixel (%d,0) is %v, should be %v", x, img.Pixel(x, 0), top)
		}
		if img.Pixel(x, 1) != bottom {
			t.Errorf("pixel (%d,1) is %v, should be %v", x, img.Pixel(x, 1), bottom)
		}
	}
}

func TestLoadOldFormatZeroLengthRun(t *testing.T) {
	data := []byte("#?RADIANCE\x00\n\n-Y 1 +X 1\n\xff\x00\xff\x80\x01\x01\x01\x00")
	img, err := libhdr.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Data[0] != (libhdr.RGB{R: 1, G: 0, B: 1}) {
		t.Errorf("pixel is %v, should be {1 0 1}", img.Data[0])
	}
}

var newFormatRun = []byte("#?RADIANCE\x00\n\n-Y 1 +X 8\n" +
	"\x02\x02\x00\x08" +
	"\x88\xff\x88\x00\x88\xff\x88\x80")

func TestLoadNewFormatRun(t *testing.T) {
	img, err := libhdr.Load(bytes.NewReader(newFormatRun))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 8 || img.Height != 1 {
		t.Fatalf("image is %dx%d, should be 8x1", img.Width, img.Height)
	}
	want := libhdr.RGB{R: 1, G: 0, B: 1}
	for i, px := range img.Data {
		if px != want {
			t.Errorf("pixel %d is %v, should be %v", i, px, want)
		}
	}
}

func TestLoadNewFormatIgnoresTrailingBytes(t *testing.T) {
	data := append([]byte{}, newFormatRun...)
	data = append(data, 0x80, 0x56)
	img, err := libhdr.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Data[0] != (libhdr.RGB{R: 1, G: 0, B: 1}) {
		t.Errorf("pixel is %v, should be {1 0 1}", img.Data[0])
	}
}

func TestLoadConcatenated(t *testing.T) {
	// Two images back to back on one buffered reader: the second load
	// must pick up exactly where the first stopped consuming.
	br := bufio.NewReader(bytes.NewReader(append(append([]byte{}, newFormatRun...), newFormatRun...)))

	first, err := libhdr.Load(br)
	if err != nil {
		t.Fatal(err)
	}
	second, err := libhdr.Load(br)
	if err != nil {
		t.Fatal(err)
	}

	if first.Width != second.Width || first.Height != second.Height {
		t.Fatalf("images differ in size: %dx%d vs %dx%d", first.Width, first.Height, second.Width, second.Height)
	}
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("pixel %d differs: %v vs %v", i, first.Data[i], second.Data[i])
		}
	}
}

func TestLoadEmptyImage(t *testing.T) {
	img, err := libhdr.Load(bytes.NewReader([]byte("#?RADIANCE\x00\n\n-Y 0 +X 0\n")))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 0 || img.Height != 0 || len(img.Data) != 0 {
		t.Errorf("image is %dx%d with %d pixels, should be empty", img.Width, img.Height, len(img.Data))
	}
}

func TestStreamingMatchesLoad(t *testing.T) {
	data := synthOldFormatImage(64, 16)

	whole, err := libhdr.Load(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	loader, err := libhdr.NewLoader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if loader.Width != 64 || loader.Height != 16 {
		t.Fatalf("header is %dx%d, should be 64x16", loader.Width, loader.Height)
	}

	sc := loader.Scanlines()
	// Deliberately larger than one row, only the first Width entries
	// may be written.
	row := make([]libhdr.RGB, sc.Width+3)
	for y := 0; y < sc.Height; y++ {
		row[sc.Width] = libhdr.RGB{R: -1}
		if err := sc.ReadScanline(row); err != nil {
			t.Fatalf("scanline %d: %v", y, err)
		}
		if row[sc.Width] != (libhdr.RGB{R: -1}) {
			t.Fatalf("scanline %d wrote past the image width", y)
		}
		for x := 0; x < sc.Width; x++ {
			if row[x] != whole.Pixel(x, y) {
				t.Fatalf("pixel (%d,%d) is %v, should be %v", x, y, row[x], whole.Pixel(x, y))
			}
		}
	}
}

func TestReadScanlineShortBuffer(t *testing.T) {
	loader, err := libhdr.NewLoader(bytes.NewReader(newFormatRun))
	if err != nil {
		t.Fatal(err)
	}
	sc := loader.Scanlines()

	short := make([]libhdr.RGB, sc.Width-1)
	if err := sc.ReadScanline(short); !errors.Is(err, io.ErrShortBuffer) {
		t.Fatalf("got %v, should be %v", err, io.ErrShortBuffer)
	}

	// The failed call must not have consumed any input.
	row := make([]libhdr.RGB, sc.Width)
	if err := sc.ReadScanline(row); err != nil {
		t.Fatal(err)
	}
	if row[0] != (libhdr.RGB{R: 1, G: 0, B: 1}) {
		t.Errorf("pixel is %v, should be {1 0 1}", row[0])
	}
}

func TestLoadTruncatedScanlines(t *testing.T) {
	data := []byte("#?RADIANCE\x00\n\n-Y 2 +X 2\n\xff\x00\xff\x80\x01\x01\x01\x01")
	_, err := libhdr.Load(bytes.NewReader(data))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("got %v, should be %v", err, io.ErrUnexpectedEOF)
	}
}

func TestPixLayout(t *testing.T) {
	img, err := libhdr.Load(bytes.NewReader(newFormatRun))
	if err != nil {
		t.Fatal(err)
	}
	pix := img.Pix()
	if len(pix) != 3*len(img.Data) {
		t.Fatalf("flat view has %d floats, should be %d", len(pix), 3*len(img.Data))
	}
	for i, px := range img.Data {
		if pix[i*3] != px.R || pix[i*3+1] != px.G || pix[i*3+2] != px.B {
			t.Fatalf("flat view diverges at pixel %d", i)
		}
	}
}

// synthOldFormatImage builds a legacy-encoded file with literal pixels
// and an occasional run marker.
func synthOldFormatImage(width, height int) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n")
	fmt.Fprintf(buf, "-Y %d +X %d\n", height, width)

	for y := 0; y < height; y++ {
		x := 0
		for x < width {
			buf.Write([]byte{byte(x), byte(y), byte(x ^ y), 0x80})
			x++
			if x%7 == 0 && width-x >= 3 {
				buf.Write([]byte{1, 1, 1, 3})
				x += 3
			}
		}
	}
	return buf.Bytes()
}

// synthNewFormatImage builds a per-channel encoded file, each plane a
// mix of runs and literals.
func synthNewFormatImage(width, height int) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n")
	fmt.Fprintf(buf, "-Y %d +X %d\n", height, width)

	for y := 0; y < height; y++ {
		buf.Write([]byte{2, 2, byte(width >> 8), byte(width)})
		for plane := 0; plane < 4; plane++ {
			left := width
			for left > 0 {
				if left >= 4 && left%2 == 0 {
					n := left / 2
					if n > 127 {
						n = 127
					}
					buf.Write([]byte{byte(128 + n), byte(plane*16 + y)})
					left -= n
				} else {
					n := left
					if n > 128 {
						n = 128
					}
					buf.WriteByte(byte(n))
					for i := 0; i < n; i++ {
						buf.WriteByte(byte(i))
					}
					left -= n
				}
			}
		}
	}
	return buf.Bytes()
}

func BenchmarkLoadOldFormat(b *testing.B) {
	data := synthOldFormatImage(1024, 512)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := libhdr.Load(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoadNewFormat(b *testing.B) {
	data := synthNewFormatImage(1024, 512)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := libhdr.Load(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkReadScanline(b *testing.B) {
	data := synthNewFormatImage(1024, 512)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loader, err := libhdr.NewLoader(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		sc := loader.Scanlines()
		row := make([]libhdr.RGB, sc.Width)
		for y := 0; y < sc.Height; y++ {
			if err := sc.ReadScanline(row); err != nil {
				b.Fatal(err)
			}
		}
	}
}
