// Package ident packs and unpacks compound file identifiers.
//
// A file identifier is 12 bytes: three little-endian uint32s stored contiguously.
// The daemon indexes the three parts as uri1, uri2 and uri3 and uses them as its
// routing key.
package ident

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/psyvisions/foofind-web/internal/domain"
)

// Size is the binary length of an ID.
const Size = 12

const shardShift = 32

// ID is a packed file identifier.
type ID [Size]byte

// Parts is the decomposed form of an ID.
type Parts struct {
	P1, P2, P3 uint32
}

// Encode packs three parts into an ID. It never fails.
func Encode(p1, p2, p3 uint32) ID {
	var id ID
	binary.LittleEndian.PutUint32(id[0:4], p1)
	binary.LittleEndian.PutUint32(id[4:8], p2)
	binary.LittleEndian.PutUint32(id[8:12], p3)
	return id
}

// Decode unpacks raw bytes into their three parts.
func Decode(b []byte) (Parts, error) {
	if len(b) != Size {
		return Parts{}, fmt.Errorf("%w: want %d bytes, got %d", domain.ErrMalformedIdentifier, Size, len(b))
	}
	return Parts{
		P1: binary.LittleEndian.Uint32(b[0:4]),
		P2: binary.LittleEndian.Uint32(b[4:8]),
		P3: binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

// FromBytes copies raw bytes into an ID.
func FromBytes(b []byte) (ID, error) {
	if len(b) != Size {
		return ID{}, fmt.Errorf("%w: want %d bytes, got %d", domain.ErrMalformedIdentifier, Size, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// Parts decomposes the ID.
func (id ID) Parts() Parts {
	p, _ := Decode(id[:])
	return p
}

// Hex returns the lower-case hex form (24 characters).
func (id ID) Hex() string { return hex.EncodeToString(id[:]) }

// URL returns the unpadded URL-safe base64 form (16 characters).
func (id ID) URL() string { return base64.RawURLEncoding.EncodeToString(id[:]) }

// String implements fmt.Stringer with the hex form.
func (id ID) String() string { return id.Hex() }

// ParseHex decodes the hex form.
func ParseHex(s string) (ID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %w", domain.ErrMalformedIdentifier, err)
	}
	return FromBytes(b)
}

// ParseURL decodes the URL-safe base64 form. Padding is tolerated.
func ParseURL(s string) (ID, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return ID{}, fmt.Errorf("%w: %w", domain.ErrMalformedIdentifier, err)
	}
	return FromBytes(b)
}

// Parse accepts either text form, choosing by length.
func Parse(s string) (ID, error) {
	switch len(s) {
	case hex.EncodedLen(Size):
		return ParseHex(s)
	case base64.RawURLEncoding.EncodedLen(Size):
		return ParseURL(s)
	default:
		return ID{}, fmt.Errorf("%w: unexpected text length %d", domain.ErrMalformedIdentifier, len(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ShardOf returns the server index encoded in the high 32 bits of a daemon document id.
func ShardOf(internalID uint64) uint32 {
	return uint32(internalID >> shardShift)
}
