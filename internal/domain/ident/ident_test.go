package ident

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyvisions/foofind-web/internal/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []Parts{
		{0, 0, 0},
		{1, 2, 3},
		{math.MaxUint32, 0, math.MaxUint32},
		{0xdeadbeef, 0x01020304, 0x7fffffff},
	}
	for _, p := range cases {
		id := Encode(p.P1, p.P2, p.P3)
		got, err := Decode(id[:])
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.Equal(t, p, id.Parts())
	}
}

func TestEncode_LittleEndianLayout(t *testing.T) {
	id := Encode(1, 0x0100, 0x01000000)
	want := ID{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 1}
	assert.Equal(t, want, id)
}

func TestDecode_WrongLength(t *testing.T) {
	for _, n := range []int{0, 11, 13, 24} {
		_, err := Decode(make([]byte, n))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMalformedIdentifier), "len %d", n)
	}
}

func TestTextForms(t *testing.T) {
	id := Encode(0x11223344, 0x55667788, 0x99aabbcc)

	h := id.Hex()
	assert.Len(t, h, 24)
	fromHex, err := Parse(h)
	require.NoError(t, err)
	assert.Equal(t, id, fromHex)

	u := id.URL()
	assert.Len(t, u, 16)
	fromURL, err := Parse(u)
	require.NoError(t, err)
	assert.Equal(t, id, fromURL)
}

func TestParse_Malformed(t *testing.T) {
	for _, s := range []string{"", "zz", "zzzzzzzzzzzzzzzzzzzzzzzz", "not*base64*here!"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, domain.ErrMalformedIdentifier, "input %q", s)
	}
}

func TestUnmarshalText(t *testing.T) {
	id := Encode(7, 8, 9)
	var got ID
	require.NoError(t, got.UnmarshalText([]byte(id.URL())))
	assert.Equal(t, id, got)

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), string(text))
}

func TestShardOf(t *testing.T) {
	assert.Equal(t, uint32(0), ShardOf(0xffffffff))
	assert.Equal(t, uint32(1), ShardOf(1<<32))
	assert.Equal(t, uint32(3), ShardOf(3<<32|12345))
	assert.Equal(t, uint32(math.MaxUint32), ShardOf(math.MaxUint64))
}
