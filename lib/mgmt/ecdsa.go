// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package mgmt

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// EcdsaCurve is the signature curve of a threshold ECDSA key.
type EcdsaCurve uint8

const (
	// Secp256k1 is the only curve currently supported.
	Secp256k1 EcdsaCurve = iota + 1
)

// String returns the display name ("Secp256k1").
func (c EcdsaCurve) String() string {
	switch c {
	case Secp256k1:
		return "Secp256k1"
	default:
		return fmt.Sprintf("EcdsaCurve(%d)", uint8(c))
	}
}

// ParseEcdsaCurve parses a curve name, ignoring case.
func ParseEcdsaCurve(name string) (EcdsaCurve, error) {
	if strings.EqualFold(name, "secp256k1") {
		return Secp256k1, nil
	}
	return 0, fmt.Errorf("unknown ECDSA curve %q", name)
}

// MarshalText implements encoding.TextMarshaler. Wire form is the
// lower-case curve name.
func (c EcdsaCurve) MarshalText() ([]byte, error) {
	if c != Secp256k1 {
		return nil, fmt.Errorf("cannot marshal %s", c)
	}
	return []byte("secp256k1"), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *EcdsaCurve) UnmarshalText(data []byte) error {
	parsed, err := ParseEcdsaCurve(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// EcdsaKeyID names a threshold ECDSA key. Two key ids are equal when
// both curve and name match. EcdsaKeyID is comparable and used as a
// map key by the topology.
type EcdsaKeyID struct {
	Curve EcdsaCurve `cbor:"curve"`
	Name  string     `cbor:"name"`
}

// ParseEcdsaKeyID parses the display form "curve:name"
// ("Secp256k1:some_key"). The curve is matched ignoring case; the
// name is everything after the first colon.
func ParseEcdsaKeyID(text string) (EcdsaKeyID, error) {
	curveName, name, found := strings.Cut(text, ":")
	if !found {
		return EcdsaKeyID{}, fmt.Errorf("invalid ECDSA key id %q: expected curve:name", text)
	}
	curve, err := ParseEcdsaCurve(curveName)
	if err != nil {
		return EcdsaKeyID{}, fmt.Errorf("invalid ECDSA key id %q: %w", text, err)
	}
	key := EcdsaKeyID{Curve: curve, Name: name}
	if err := key.Validate(); err != nil {
		return EcdsaKeyID{}, err
	}
	return key, nil
}

// MustParseEcdsaKeyID is like ParseEcdsaKeyID but panics on error.
func MustParseEcdsaKeyID(text string) EcdsaKeyID {
	key, err := ParseEcdsaKeyID(text)
	if err != nil {
		panic(fmt.Sprintf("mgmt.MustParseEcdsaKeyID(%q): %v", text, err))
	}
	return key
}

// Validate checks that the key id names a supported curve and a
// non-empty key.
func (k EcdsaKeyID) Validate() error {
	if k.Curve != Secp256k1 {
		return fmt.Errorf("invalid ECDSA key id: unsupported curve %s", k.Curve)
	}
	if k.Name == "" {
		return fmt.Errorf("invalid ECDSA key id: empty name")
	}
	return nil
}

// String returns the display form "Secp256k1:name". Error messages and
// diagnostics use this form.
func (k EcdsaKeyID) String() string {
	return k.Curve.String() + ":" + k.Name
}

// Compare orders key ids by curve, then name.
func (k EcdsaKeyID) Compare(other EcdsaKeyID) int {
	if c := cmp.Compare(k.Curve, other.Curve); c != 0 {
		return c
	}
	return strings.Compare(k.Name, other.Name)
}

// SortEcdsaKeyIDs sorts keys in place by Compare and removes
// duplicates, returning the shortened slice.
func SortEcdsaKeyIDs(keys []EcdsaKeyID) []EcdsaKeyID {
	slices.SortFunc(keys, EcdsaKeyID.Compare)
	return slices.Compact(keys)
}

// FormatEcdsaKeyIDs renders keys as "[k1, k2]" in the given order. An
// empty list renders as "[]".
func FormatEcdsaKeyIDs(keys []EcdsaKeyID) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, key := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(key.String())
	}
	builder.WriteByte(']')
	return builder.String()
}
