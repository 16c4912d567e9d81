/*
Package bits implements the bit level primitives used to hide data in image
channel samples.

Values are converted to fixed width, most significant bit first sequences of
Bit. A single bit is carried by a sample through its parity; an even sample
carries a zero and an odd sample carries a one. Forcing the parity of a sample
never changes it by more than one.
*/
package bits

// Bit is a single binary digit, either Zero or One.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

// ToBits returns the width least significant bits of value, most significant
// first. Shorter values are padded with leading zeroes, bits above width are
// dropped.
func ToBits(value uint64, width int) []Bit {
	if width <= 0 {
		return nil
	}
	b := make([]Bit, width)
	for i := width - 1; i >= 0; i-- {
		b[width-1-i] = Bit(value >> uint(i) & 1)
	}
	return b
}

// FromBits reassembles a most significant bit first sequence into a value.
func FromBits(b []Bit) uint64 {
	var v uint64
	for _, bit := range b {
		v = v<<1 | uint64(bit&1)
	}
	return v
}

// Parity returns Zero if sample is even, One if it is odd.
func Parity(sample uint8) Bit {
	return Bit(sample & 1)
}

// ForceParity returns sample adjusted so that its parity matches b. Only the
// least significant bit is ever flipped so 255 becomes 254, never 256.
func ForceParity(sample uint8, b Bit) uint8 {
	if Parity(sample) == b&1 {
		return sample
	}
	return sample ^ 1
}
