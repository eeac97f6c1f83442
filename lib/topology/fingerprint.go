// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/sysroute/sysroute/lib/codec"
)

// Fingerprint identifies the content of a topology: the BLAKE3 keyed
// hash of its canonical CBOR document. Two snapshots with the same
// fingerprint route every call identically, whatever format they were
// read from.
type Fingerprint [32]byte

// fingerprintKey is the BLAKE3 key for topology fingerprints: the ASCII
// domain name zero-padded to 32 bytes.
var fingerprintKey = [32]byte{
	's', 'y', 's', 'r', 'o', 'u', 't', 'e', '.', 't', 'o', 'p', 'o', 'l', 'o', 'g',
	'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ComputeFingerprint returns the fingerprint of t.
func ComputeFingerprint(t *NetworkTopology) (Fingerprint, error) {
	data, err := codec.Marshal(NewDocument(t))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprinting topology: %w", err)
	}
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("topology: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint, nil
}

// String returns the lower-case hex form.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters, for log lines.
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// IsZero reports whether f is the zero value (no topology loaded).
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// MarshalText implements encoding.TextMarshaler.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fingerprint) UnmarshalText(data []byte) error {
	decoded, err := hex.DecodeString(string(data))
	if err != nil {
		return fmt.Errorf("parsing topology fingerprint: %w", err)
	}
	if len(decoded) != len(f) {
		return fmt.Errorf("topology fingerprint is %d bytes, want %d", len(decoded), len(f))
	}
	copy(f[:], decoded)
	return nil
}
