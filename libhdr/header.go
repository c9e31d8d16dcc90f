package libhdr

import (
	"bufio"
	"fmt"
)

const eol = 0x0A

const maxInt = int(^uint(0) >> 1)

// parseHeader consumes the free-form header paragraph and the
// resolution line, leaving the reader at the first pixel data byte.
// The magic signature must already have been consumed.
func parseHeader(br *bufio.Reader) (width, height int, err error) {
	// The paragraph of metadata lines ends at two consecutive line
	// terminators.
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, 0, readErr(err)
		}
		if b != eol {
			continue
		}
		b, err = br.ReadByte()
		if err != nil {
			return 0, 0, readErr(err)
		}
		if b == eol {
			break
		}
	}

	p := dimParser{src: br}
	if err := p.eat(); err != nil {
		return 0, 0, err
	}
	return p.parse()
}

// dimParser is a hand-rolled recursive-descent parser for the
// resolution line, with the current byte as its only state. Only the
// `-Y <height> +X <width>` convention is accepted; any other
// orientation is a header error.
type dimParser struct {
	src *bufio.Reader
	cur byte
}

func (p *dimParser) parse() (width, height int, err error) {
	if _, err = p.eatSpaces(); err != nil {
		return 0, 0, err
	}
	if err = p.expect("-Y"); err != nil {
		return 0, 0, err
	}
	if err = p.expectSpaces(); err != nil {
		return 0, 0, err
	}
	if height, err = p.expectUint(); err != nil {
		return 0, 0, err
	}
	if err = p.expectSpaces(); err != nil {
		return 0, 0, err
	}
	if err = p.expect("+X"); err != nil {
		return 0, 0, err
	}
	if err = p.expectSpaces(); err != nil {
		return 0, 0, err
	}
	if width, err = p.expectUint(); err != nil {
		return 0, 0, err
	}
	if _, err = p.eatSpaces(); err != nil {
		return 0, 0, err
	}
	if p.cur != eol {
		return 0, 0, fmt.Errorf("%w: resolution line not terminated", ErrHeader)
	}
	return width, height, nil
}

// eat advances to the next byte.
func (p *dimParser) eat() error {
	b, err := p.src.ReadByte()
	if err != nil {
		return readErr(err)
	}
	p.cur = b
	return nil
}

func (p *dimParser) eatSpaces() (ate bool, err error) {
	for p.cur == ' ' {
		ate = true
		if err := p.eat(); err != nil {
			return ate, err
		}
	}
	return ate, nil
}

func (p *dimParser) expectSpaces() error {
	ate, err := p.eatSpaces()
	if err != nil {
		return err
	}
	if !ate {
		return fmt.Errorf("%w: expected separating space", ErrHeader)
	}
	return nil
}

func (p *dimParser) expect(token string) error {
	for i := 0; i < len(token); i++ {
		if p.cur != token[i] {
			return fmt.Errorf("%w: expected %q", ErrHeader, token)
		}
		if err := p.eat(); err != nil {
			return err
		}
	}
	return nil
}

// expectUint parses an unsigned decimal integer digit by digit with an
// overflow check, malformed files must not wrap silently.
func (p *dimParser) expectUint() (int, error) {
	if !isDigit(p.cur) {
		return 0, fmt.Errorf("%w: expected decimal digit", ErrHeader)
	}
	value := 0
	for {
		digit := int(p.cur - '0')
		if value > (maxInt-digit)/10 {
			return 0, fmt.Errorf("%w: dimension overflow", ErrHeader)
		}
		value = value*10 + digit
		if err := p.eat(); err != nil {
			return 0, err
		}
		if !isDigit(p.cur) {
			return value, nil
		}
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
