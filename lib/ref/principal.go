// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"bytes"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/zeebo/blake3"
)

// MaxPrincipalLength is the maximum number of bytes in a principal.
const MaxPrincipalLength = 29

// Principal class tags. The class is the last byte of a non-empty
// principal.
const (
	classOpaque            = 0x01
	classSelfAuthenticated = 0x02
	classDerived           = 0x03
	classAnonymous         = 0x04
)

// selfAuthenticatingHashLength is the number of digest bytes that
// precede the class tag in a self-authenticating principal.
const selfAuthenticatingHashLength = 28

// groupLength is the number of base32 characters between dashes in the
// textual form.
const groupLength = 5

// textEncoding is RFC 4648 base32 without padding. The textual form is
// lower-case; encoding produces upper-case and is folded afterwards.
var textEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// PrincipalID is an opaque identifier of at most 29 bytes.
//
// PrincipalID is an immutable, comparable value type. The zero value is
// the empty principal, which is the management canister id.
type PrincipalID struct {
	length uint8
	data   [MaxPrincipalLength]byte
}

var (
	// ManagementCanisterID is the principal of the management canister
	// (textual form "aaaaa-aa"). Calls addressed to it are routed by
	// method and payload rather than by receiver.
	ManagementCanisterID = PrincipalID{}

	// AnonymousID is the principal used by unauthenticated callers.
	AnonymousID = PrincipalID{length: 1, data: [MaxPrincipalLength]byte{classAnonymous}}
)

// PrincipalFromBytes wraps raw principal bytes. Returns an error if the
// input is longer than MaxPrincipalLength.
func PrincipalFromBytes(raw []byte) (PrincipalID, error) {
	if len(raw) > MaxPrincipalLength {
		return PrincipalID{}, fmt.Errorf("invalid principal: %d bytes exceeds maximum of %d", len(raw), MaxPrincipalLength)
	}
	var p PrincipalID
	p.length = uint8(len(raw))
	copy(p.data[:], raw)
	return p, nil
}

// MustPrincipalFromBytes is like PrincipalFromBytes but panics on error.
// Use in tests and static initialization where the input is known-valid.
func MustPrincipalFromBytes(raw []byte) PrincipalID {
	p, err := PrincipalFromBytes(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustPrincipalFromBytes(%x): %v", raw, err))
	}
	return p
}

// NewOpaque returns an opaque-class principal: the given bytes followed
// by the opaque class tag. Returns an error if the result would exceed
// MaxPrincipalLength.
func NewOpaque(raw []byte) (PrincipalID, error) {
	if len(raw)+1 > MaxPrincipalLength {
		return PrincipalID{}, fmt.Errorf("invalid opaque principal: %d bytes exceeds maximum of %d", len(raw), MaxPrincipalLength-1)
	}
	return PrincipalFromBytes(append(append([]byte{}, raw...), classOpaque))
}

// NewSelfAuthenticating derives the principal owned by a public key:
// the first 28 bytes of the BLAKE3 digest of the DER-encoded key
// followed by the self-authenticating class tag.
func NewSelfAuthenticating(publicKey []byte) PrincipalID {
	digest := blake3.Sum256(publicKey)
	var p PrincipalID
	p.length = selfAuthenticatingHashLength + 1
	copy(p.data[:selfAuthenticatingHashLength], digest[:selfAuthenticatingHashLength])
	p.data[selfAuthenticatingHashLength] = classSelfAuthenticated
	return p
}

// ParsePrincipal parses the textual form of a principal. The input must
// be canonical: lower-case, correctly grouped, with a valid checksum.
func ParsePrincipal(text string) (PrincipalID, error) {
	if text == "" {
		return PrincipalID{}, fmt.Errorf("invalid principal: empty string")
	}
	if text != strings.ToLower(text) {
		return PrincipalID{}, fmt.Errorf("invalid principal %q: must be lower-case", text)
	}

	ungrouped := strings.ReplaceAll(text, "-", "")
	decoded, err := textEncoding.DecodeString(strings.ToUpper(ungrouped))
	if err != nil {
		return PrincipalID{}, fmt.Errorf("invalid principal %q: %w", text, err)
	}
	if len(decoded) < crc32.Size {
		return PrincipalID{}, fmt.Errorf("invalid principal %q: too short to contain a checksum", text)
	}

	raw := decoded[crc32.Size:]
	p, err := PrincipalFromBytes(raw)
	if err != nil {
		return PrincipalID{}, fmt.Errorf("invalid principal %q: %w", text, err)
	}
	if binary.BigEndian.Uint32(decoded[:crc32.Size]) != crc32.ChecksumIEEE(raw) {
		return PrincipalID{}, fmt.Errorf("invalid principal %q: checksum mismatch", text)
	}
	if canonical := p.String(); canonical != text {
		return PrincipalID{}, fmt.Errorf("invalid principal %q: not in canonical form (expected %q)", text, canonical)
	}
	return p, nil
}

// Bytes returns a copy of the raw principal bytes.
func (p PrincipalID) Bytes() []byte {
	return append([]byte(nil), p.data[:p.length]...)
}

// Len returns the number of raw bytes.
func (p PrincipalID) Len() int { return int(p.length) }

// IsManagementCanister reports whether p is the empty principal.
func (p PrincipalID) IsManagementCanister() bool { return p.length == 0 }

// IsSelfAuthenticating reports whether p was derived from a public key.
func (p PrincipalID) IsSelfAuthenticating() bool {
	return p.length == selfAuthenticatingHashLength+1 && p.data[p.length-1] == classSelfAuthenticated
}

// Compare orders principals byte-wise. Returns -1, 0 or +1.
func (p PrincipalID) Compare(other PrincipalID) int {
	return bytes.Compare(p.data[:p.length], other.data[:other.length])
}

// String returns the canonical textual form.
func (p PrincipalID) String() string {
	raw := p.data[:p.length]
	buffer := make([]byte, crc32.Size+len(raw))
	binary.BigEndian.PutUint32(buffer, crc32.ChecksumIEEE(raw))
	copy(buffer[crc32.Size:], raw)

	encoded := strings.ToLower(textEncoding.EncodeToString(buffer))

	var builder strings.Builder
	builder.Grow(len(encoded) + len(encoded)/groupLength)
	for i := 0; i < len(encoded); i += groupLength {
		if i > 0 {
			builder.WriteByte('-')
		}
		builder.WriteString(encoded[i:min(i+groupLength, len(encoded))])
	}
	return builder.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p PrincipalID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PrincipalID) UnmarshalText(data []byte) error {
	parsed, err := ParsePrincipal(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
