/*
Package frame implements the message framing used to hide text in a flat
sequence of channel samples.

A frame is a 16-bit big endian length prefix followed by eight bits per
character, most significant bit first. Every bit is carried by the parity of
one sample and consecutive bits are stride samples apart, so with a stride of
three only the first channel of each RGB pixel is touched. A message of length
L therefore needs 16*stride + L*8*stride samples.

Characters are limited to the codepoints 0 to 255.
*/
package frame

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/bodgit/lsb/bits"
)

const (
	// LengthBits is the width of the length prefix
	LengthBits = 16
	// CharBits is the width of each character
	CharBits = 8
	// MaxLength is the longest message the length prefix can describe
	MaxLength = 1<<LengthBits - 1

	maxChar = 1<<CharBits - 1
)

var (
	// ErrCapacity is returned when a message does not fit in the samples
	ErrCapacity = errors.New("frame: message exceeds capacity")
	// ErrOutOfRange is returned when decoding would read past the samples
	ErrOutOfRange = errors.New("frame: sample index out of range")
	// ErrInvalidCharacter is returned for characters outside 0 to 255
	ErrInvalidCharacter = errors.New("frame: invalid character")
	// ErrInvalidStride is returned when the stride is less than one
	ErrInvalidStride = errors.New("frame: invalid stride")
)

// Required returns the number of samples needed to hold a message of length
// characters. A result too large to represent is reported as math.MaxInt,
// which no sample buffer can satisfy.
func Required(length, stride int) int {
	if stride > 0 && length >= 0 {
		if stride > math.MaxInt/LengthBits || length > (math.MaxInt/stride-LengthBits)/CharBits {
			return math.MaxInt
		}
	}
	return LengthBits*stride + length*CharBits*stride
}

// Capacity returns the longest message that fits in n samples.
func Capacity(n, stride int) int {
	if stride < 1 || stride > math.MaxInt/LengthBits || n < LengthBits*stride {
		return 0
	}
	c := (n - LengthBits*stride) / (CharBits * stride)
	if c > MaxLength {
		return MaxLength
	}
	return c
}

func write(samples []uint8, offset, stride int, b []bits.Bit) int {
	for _, bit := range b {
		samples[offset] = bits.ForceParity(samples[offset], bit)
		offset += stride
	}
	return offset
}

func read(samples []uint8, offset, stride, width int) (uint64, int) {
	b := make([]bits.Bit, width)
	for i := range b {
		b[i] = bits.Parity(samples[offset])
		offset += stride
	}
	return bits.FromBits(b), offset
}

// EncodeLength writes just the length prefix into samples.
func EncodeLength(samples []uint8, length, stride int) error {
	if stride < 1 {
		return ErrInvalidStride
	}
	if length < 0 || length > MaxLength {
		return fmt.Errorf("%w: length %d", ErrCapacity, length)
	}
	if n := Required(0, stride); len(samples) < n {
		return fmt.Errorf("%w: %d samples, need %d", ErrCapacity, len(samples), n)
	}

	write(samples, 0, stride, bits.ToBits(uint64(length), LengthBits))

	return nil
}

// Encode hides message in samples. Nothing is modified unless the whole
// message fits.
func Encode(samples []uint8, message string, stride int) error {
	if stride < 1 {
		return ErrInvalidStride
	}

	length := utf8.RuneCountInString(message)
	if length > MaxLength {
		return fmt.Errorf("%w: length %d", ErrCapacity, length)
	}

	for i, r := range message {
		if r > maxChar {
			return fmt.Errorf("%w: %q at offset %d", ErrInvalidCharacter, r, i)
		}
	}

	if n := Required(length, stride); len(samples) < n {
		return fmt.Errorf("%w: %d samples, need %d", ErrCapacity, len(samples), n)
	}

	if err := EncodeLength(samples, length, stride); err != nil {
		return err
	}

	offset := LengthBits * stride
	for _, r := range message {
		offset = write(samples, offset, stride, bits.ToBits(uint64(r), CharBits))
	}

	return nil
}

// DecodeLength reads the length prefix from samples.
func DecodeLength(samples []uint8, stride int) (uint16, error) {
	if stride < 1 {
		return 0, ErrInvalidStride
	}
	if n := Required(0, stride); len(samples) < n {
		return 0, fmt.Errorf("%w: %d samples, need %d", ErrOutOfRange, len(samples), n)
	}

	v, _ := read(samples, 0, stride, LengthBits)

	return uint16(v), nil
}

// DecodeMessage reads length characters from samples, starting after the
// length prefix.
func DecodeMessage(samples []uint8, length, stride int) (string, error) {
	if stride < 1 {
		return "", ErrInvalidStride
	}
	if length < 0 {
		return "", fmt.Errorf("%w: length %d", ErrOutOfRange, length)
	}
	if n := Required(length, stride); len(samples) < n {
		return "", fmt.Errorf("%w: %d samples, need %d", ErrOutOfRange, len(samples), n)
	}

	var sb strings.Builder
	sb.Grow(length)

	offset := LengthBits * stride
	for i := 0; i < length; i++ {
		var c uint64
		c, offset = read(samples, offset, stride, CharBits)
		sb.WriteRune(rune(c))
	}

	return sb.String(), nil
}

// Decode reads the length prefix and then the message it describes.
func Decode(samples []uint8, stride int) (string, error) {
	length, err := DecodeLength(samples, stride)
	if err != nil {
		return "", err
	}
	return DecodeMessage(samples, int(length), stride)
}
