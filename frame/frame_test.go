package frame

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(n int, v uint8) []uint8 {
	return bytes.Repeat([]uint8{v}, n)
}

func TestEncodeDecodeHi(t *testing.T) {
	samples := filled(96, 100)
	require.Equal(t, 96, Required(2, 3))

	require.NoError(t, Encode(samples, "Hi", 3))

	length, err := DecodeLength(samples, 3)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), length)

	message, err := DecodeMessage(samples, int(length), 3)
	require.NoError(t, err)
	assert.Equal(t, "Hi", message)

	for i, s := range samples {
		assert.True(t, s == 100 || s == 101, "sample %d is %d", i, s)
		if i%3 != 0 {
			assert.Equal(t, uint8(100), s, "sample %d is not on the stride", i)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	var all strings.Builder
	for r := rune(0); r <= maxChar; r++ {
		all.WriteRune(r)
	}

	tables := []struct {
		name    string
		message string
		stride  int
	}{
		{"empty", "", 3},
		{"ascii", "The quick brown fox", 3},
		{"alpha", "jumps over the lazy dog", 4},
		{"latin1", "café ÿ", 3},
		{"every codepoint", all.String(), 1},
		{"stride one", "abc", 1},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			length := len([]rune(table.message))
			samples := make([]uint8, Required(length, table.stride)+7)
			for i := range samples {
				samples[i] = uint8(i * 31)
			}

			require.NoError(t, Encode(samples, table.message, table.stride))

			message, err := DecodeMessage(samples, length, table.stride)
			require.NoError(t, err)
			assert.Equal(t, table.message, message)

			message, err = Decode(samples, table.stride)
			require.NoError(t, err)
			assert.Equal(t, table.message, message)
		})
	}
}

func TestLengthRoundTrip(t *testing.T) {
	samples := filled(LengthBits*4, 255)
	for length := 0; length <= MaxLength; length += 257 {
		require.NoError(t, EncodeLength(samples, length, 4))

		got, err := DecodeLength(samples, 4)
		require.NoError(t, err)
		assert.Equal(t, uint16(length), got)
	}

	require.NoError(t, EncodeLength(samples, MaxLength, 4))
	got, err := DecodeLength(samples, 4)
	require.NoError(t, err)
	assert.Equal(t, uint16(MaxLength), got)
}

func TestEncodeLengthErrors(t *testing.T) {
	samples := filled(LengthBits*3, 0)

	assert.ErrorIs(t, EncodeLength(samples, -1, 3), ErrCapacity)
	assert.ErrorIs(t, EncodeLength(samples, MaxLength+1, 3), ErrCapacity)
	assert.ErrorIs(t, EncodeLength(samples[:LengthBits*3-1], 1, 3), ErrCapacity)
	assert.ErrorIs(t, EncodeLength(samples, 1, 0), ErrInvalidStride)
}

func TestCapacityBoundary(t *testing.T) {
	for _, stride := range []int{1, 3, 4} {
		for _, length := range []int{0, 1, 5} {
			message := strings.Repeat("x", length)
			n := Required(length, stride)

			assert.NoError(t, Encode(filled(n, 0), message, stride))

			if n > 0 {
				assert.ErrorIs(t, Encode(filled(n-1, 0), message, stride), ErrCapacity)
			}
		}
	}
}

func TestEncodeIsAllOrNothing(t *testing.T) {
	samples := filled(Required(4, 3)-1, 100)
	original := append([]uint8(nil), samples...)

	assert.ErrorIs(t, Encode(samples, "abcd", 3), ErrCapacity)
	assert.Equal(t, original, samples)

	samples = filled(Required(4, 3), 100)
	assert.ErrorIs(t, Encode(samples, "ab€d", 3), ErrInvalidCharacter)
	assert.Equal(t, filled(Required(4, 3), 100), samples)
}

func TestEncodeErrors(t *testing.T) {
	assert.ErrorIs(t, Encode(filled(1024, 0), "a", 0), ErrInvalidStride)
	assert.ErrorIs(t, Encode(filled(1024, 0), "a", -3), ErrInvalidStride)
	assert.ErrorIs(t, Encode(filled(1024, 0), "Ā", 1), ErrInvalidCharacter)
	assert.ErrorIs(t, Encode(filled(1024, 0), "\xff", 1), ErrInvalidCharacter)
	assert.ErrorIs(t, Encode(filled(1024, 0), strings.Repeat("a", MaxLength+1), 1), ErrCapacity)

	// Strides whose sample requirement cannot be represented
	assert.ErrorIs(t, Encode(filled(64, 0), "a", math.MaxInt/LengthBits+1), ErrCapacity)
	assert.ErrorIs(t, Encode(filled(64, 0), "", math.MaxInt), ErrCapacity)
	assert.ErrorIs(t, Encode(filled(64, 0), strings.Repeat("a", MaxLength), math.MaxInt/(LengthBits+CharBits)), ErrCapacity)
	assert.ErrorIs(t, EncodeLength(filled(64, 0), 1, math.MaxInt/LengthBits+1), ErrCapacity)
	assert.ErrorIs(t, EncodeLength(filled(64, 0), 1, math.MaxInt), ErrCapacity)
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeLength(filled(LengthBits*3-1, 0), 3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = DecodeLength(filled(LengthBits, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidStride)

	_, err = DecodeMessage(filled(Required(2, 3)-1, 0), 2, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = DecodeMessage(filled(Required(2, 3), 0), -1, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	// Requirements too large to represent
	tables := []struct {
		length, stride int
	}{
		{0, math.MaxInt/LengthBits + 1},
		{0, math.MaxInt},
		{1 << 61, 1},
		{math.MaxInt, 1},
		{math.MaxInt / CharBits, 2},
		{1, math.MaxInt / (LengthBits + CharBits) * 2},
	}

	for _, table := range tables {
		_, err = DecodeLength(filled(64, 0), table.stride)
		if table.length == 0 {
			assert.ErrorIs(t, err, ErrOutOfRange, "stride %d", table.stride)
		}

		_, err = DecodeMessage(filled(64, 0), table.length, table.stride)
		assert.ErrorIs(t, err, ErrOutOfRange, "length %d stride %d", table.length, table.stride)
	}

	// A corrupt prefix claiming more characters than the buffer holds
	samples := filled(Required(1, 3), 0)
	require.NoError(t, EncodeLength(samples, 500, 3))
	_, err = Decode(samples, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDecodeIsReadOnly(t *testing.T) {
	samples := filled(Required(3, 4), 7)
	require.NoError(t, Encode(samples, "abc", 4))
	encoded := append([]uint8(nil), samples...)

	_, err := Decode(samples, 4)
	require.NoError(t, err)
	assert.Equal(t, encoded, samples)
}

func TestRequired(t *testing.T) {
	assert.Equal(t, 48, Required(0, 3))
	assert.Equal(t, 96, Required(2, 3))
	assert.Equal(t, LengthBits+CharBits*MaxLength, Required(MaxLength, 1))

	assert.Equal(t, math.MaxInt, Required(0, math.MaxInt/LengthBits+1))
	assert.Equal(t, math.MaxInt, Required(1<<61, 1))
	assert.Equal(t, math.MaxInt, Required(MaxLength, math.MaxInt/CharBits/1000))

	// Largest length that still fits exactly
	n := (math.MaxInt - LengthBits) / CharBits
	assert.Equal(t, LengthBits+CharBits*n, Required(n, 1))
	assert.Equal(t, math.MaxInt, Required(n+1, 1))
}

func TestCapacity(t *testing.T) {
	tables := []struct {
		n, stride, want int
	}{
		{0, 3, 0},
		{47, 3, 0},
		{48, 3, 0},
		{96, 3, 2},
		{119, 3, 2},
		{120, 3, 3},
		{16 + 8*MaxLength + 800, 1, MaxLength},
		{100, 0, 0},
		{math.MaxInt, math.MaxInt, 0},
		{math.MaxInt, math.MaxInt/LengthBits + 1, 0},
	}

	for _, table := range tables {
		assert.Equal(t, table.want, Capacity(table.n, table.stride))
	}
}
