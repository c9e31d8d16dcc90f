package libio_test

import (
	"testing"

	"radhdr/libio"
)

func TestTonemapClamps(t *testing.T) {
	img := libio.NewFloatImage([]float32{0, 0.5, 1, 100, -3, 0.25}, 3, 2, 1)
	ldr := img.ToIntImage(1.0, 1.0)

	expected := []uint8{0, 127, 255, 255, 0, 63}
	for i, v := range ldr.Pix {
		if v != expected[i] {
			t.Errorf("channel %d is %d, should be %d", i, v, expected[i])
		}
	}
}

func TestToRGBA(t *testing.T) {
	img := libio.NewIntImage([]uint8{10, 20, 30, 40, 50, 60}, 3, 2, 1)
	rgba := img.ToRGBA()

	if rgba.Rect.Dx() != 2 || rgba.Rect.Dy() != 1 {
		t.Fatalf("bounds are %v, should be 2x1", rgba.Rect)
	}
	want := []uint8{10, 20, 30, 255, 40, 50, 60, 255}
	for i, v := range want {
		if rgba.Pix[i] != v {
			t.Errorf("byte %d is %d, should be %d", i, rgba.Pix[i], v)
		}
	}
}

func TestIndex(t *testing.T) {
	img := libio.NewFloatImage(make([]float32, 4*3*3), 3, 4, 3)
	if i := img.Index(0, 0); i != 0 {
		t.Errorf("index (0,0) is %d, should be 0", i)
	}
	if i := img.Index(2, 1); i != (1*4+2)*3 {
		t.Errorf("index (2,1) is %d, should be %d", i, (1*4+2)*3)
	}
}
