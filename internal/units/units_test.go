package units

import (
	"errors"
	"testing"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUI(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     uint64
	}{
		{"1", 6, 1_000_000},
		{"1.5", 6, 1_500_000},
		{"0.000001", 6, 1},
		{".25", 2, 25},
		{"12.", 0, 12},
		{"1.500000000", 6, 1_500_000},
		{"0", 9, 0},
		{"18446744073709.551615", 6, 18446744073709551615},
	}
	for _, c := range cases {
		got, err := ParseUI64(c.in, c.decimals)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseUIErrors(t *testing.T) {
	_, err := ParseUI64("-1", 6)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = ParseUI64("0.0000001", 6)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = ParseUI64("1e5", 6)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = ParseUI64("", 6)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = ParseUI64("18446744073709.551616", 6)
	assert.True(t, errors.Is(err, ixerr.ErrValueOutOfRange))

	_, err = ParsePositiveUI64("0.0", 6)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
}

func TestParseRaw(t *testing.T) {
	v, err := ParseRaw("18446744073709551616")
	require.NoError(t, err)
	assert.Equal(t, codec.Uint128{Hi: 1, Lo: 0}, v)

	_, err = ParseRaw("340282366920938463463374607431768211456") // 2^128
	assert.True(t, errors.Is(err, ixerr.ErrValueOutOfRange))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.5", Format(codec.FromU64(1_500_000), 6))
	assert.Equal(t, "0.000001", Format(codec.FromU64(1), 6))
	assert.Equal(t, "0", Format(codec.FromU64(0), 6))
	assert.Equal(t, "42", Format(codec.FromU64(42), 0))
	assert.Equal(t, "2000", Format(codec.FromU64(2_000_000_000_000), 9))
	assert.Equal(t, "18446744073.709551616", Format(codec.Uint128{Hi: 1}, 9))
}

func TestSlippage(t *testing.T) {
	bps, err := SlippageBps(0.5)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), bps)

	for _, bad := range []float64{-0.01, 100.01, 150} {
		_, err := SlippageBps(bad)
		assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter), "%v", bad)
	}

	v := uint256.NewInt(1001)
	assert.Equal(t, uint64(1012), WithSlippageUp(v, 100).Uint64())  // ceil(1011.01)
	assert.Equal(t, uint64(990), WithSlippageDown(v, 100).Uint64()) // floor(990.99)
	assert.Equal(t, uint64(1001), WithSlippageUp(v, 0).Uint64())
	assert.Equal(t, uint64(0), WithSlippageDown(v, 10_000).Uint64())
}
