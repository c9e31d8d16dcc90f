package libhdr_test

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"radhdr/libhdr"
)

func headerReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestParseHeader(t *testing.T) {
	cases := []struct {
		name          string
		header        string
		width, height int
	}{
		{"plain", "FORMAT=32-bit_rle_rgbe\n\n-Y 2 +X 3\n", 3, 2},
		{"leading spaces", "\n\n  -Y 1 +X 1\n", 1, 1},
		{"wide separators", "\n\n-Y   480    +X   640  \n", 640, 480},
		{"multiple comment lines", "# comment\nEXPOSURE=1.0\n\n-Y 10 +X 20\n", 20, 10},
		{"zero size", "\n\n-Y 0 +X 0\n", 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, h, err := libhdr.ParseHeader(headerReader(c.header))
			if err != nil {
				t.Fatal(err)
			}
			if w != c.width || h != c.height {
				t.Errorf("parsed %dx%d, should be %dx%d", w, h, c.width, c.height)
			}
		})
	}
}

func TestParseHeaderRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"positive y", "\n\n+Y 2 +X 3\n", libhdr.ErrHeader},
		{"negative x", "\n\n-Y 2 -X 3\n", libhdr.ErrHeader},
		{"swapped axes", "\n\n+X 3 -Y 2\n", libhdr.ErrHeader},
		{"missing space", "\n\n-Y2 +X 3\n", libhdr.ErrHeader},
		{"tab separator", "\n\n-Y\t2 +X 3\n", libhdr.ErrHeader},
		{"signed dimension", "\n\n-Y -2 +X 3\n", libhdr.ErrHeader},
		{"garbage after width", "\n\n-Y 2 +X 3px\n", libhdr.ErrHeader},
		{"dimension overflow", "\n\n-Y 2 +X 99999999999999999999\n", libhdr.ErrHeader},
		{"unterminated line", "\n\n-Y 2 +X 3", io.ErrUnexpectedEOF},
		{"missing paragraph end", "\n-Y 2 +X 3\n", io.ErrUnexpectedEOF},
		{"empty input", "", io.ErrUnexpectedEOF},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := libhdr.ParseHeader(headerReader(c.header))
			if !errors.Is(err, c.want) {
				t.Errorf("got %v, should be %v", err, c.want)
			}
		})
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := libhdr.Load(strings.NewReader("#?WRONGFMT\n\n-Y 1 +X 1\n\xff\x00\xff\x80"))
	if !errors.Is(err, libhdr.ErrFileFormat) {
		t.Errorf("got %v, should be %v", err, libhdr.ErrFileFormat)
	}
}

func TestLoadRejectsTruncatedMagic(t *testing.T) {
	_, err := libhdr.Load(strings.NewReader("#?RAD"))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("got %v, should be %v", err, io.ErrUnexpectedEOF)
	}
}
