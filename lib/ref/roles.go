// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/binary"
	"fmt"
)

// CanisterID identifies a canister: an addressable unit of computation
// and storage owned by exactly one subnet at a time.
type CanisterID struct{ principal PrincipalID }

// SubnetID identifies a subnet (network partition).
type SubnetID struct{ principal PrincipalID }

// UserID identifies an end user.
type UserID struct{ principal PrincipalID }

// NodeID identifies a physical node.
type NodeID struct{ principal PrincipalID }

// NewCanisterID tags a principal as a canister id.
func NewCanisterID(p PrincipalID) CanisterID { return CanisterID{principal: p} }

// NewSubnetID tags a principal as a subnet id.
func NewSubnetID(p PrincipalID) SubnetID { return SubnetID{principal: p} }

// NewUserID tags a principal as a user id.
func NewUserID(p PrincipalID) UserID { return UserID{principal: p} }

// NewNodeID tags a principal as a node id.
func NewNodeID(p PrincipalID) NodeID { return NodeID{principal: p} }

// CanisterIDFromU64 returns the canister id allocated from the given
// sequence number: the eight big-endian bytes of n followed by two
// opaque class tags.
func CanisterIDFromU64(n uint64) CanisterID {
	var raw [10]byte
	binary.BigEndian.PutUint64(raw[:8], n)
	raw[8] = classOpaque
	raw[9] = classOpaque
	return CanisterID{principal: MustPrincipalFromBytes(raw[:])}
}

// CanisterIDFromSubnet returns the canister-addressable form of a
// subnet. A subnet stands in as a canister when a call must be
// delivered to the subnet itself (for example to its management
// handler) but the receiver type is a canister.
func CanisterIDFromSubnet(s SubnetID) CanisterID { return CanisterID{principal: s.principal} }

// ParseCanisterID parses the textual form of a canister id.
func ParseCanisterID(text string) (CanisterID, error) {
	p, err := ParsePrincipal(text)
	if err != nil {
		return CanisterID{}, fmt.Errorf("invalid canister id: %w", err)
	}
	return CanisterID{principal: p}, nil
}

// ParseSubnetID parses the textual form of a subnet id.
func ParseSubnetID(text string) (SubnetID, error) {
	p, err := ParsePrincipal(text)
	if err != nil {
		return SubnetID{}, fmt.Errorf("invalid subnet id: %w", err)
	}
	return SubnetID{principal: p}, nil
}

// ParseNodeID parses the textual form of a node id.
func ParseNodeID(text string) (NodeID, error) {
	p, err := ParsePrincipal(text)
	if err != nil {
		return NodeID{}, fmt.Errorf("invalid node id: %w", err)
	}
	return NodeID{principal: p}, nil
}

// MustParseCanisterID is like ParseCanisterID but panics on error.
func MustParseCanisterID(text string) CanisterID {
	c, err := ParseCanisterID(text)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseCanisterID(%q): %v", text, err))
	}
	return c
}

// MustParseSubnetID is like ParseSubnetID but panics on error.
func MustParseSubnetID(text string) SubnetID {
	s, err := ParseSubnetID(text)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseSubnetID(%q): %v", text, err))
	}
	return s
}

// Principal returns the underlying principal.
func (c CanisterID) Principal() PrincipalID { return c.principal }

// Compare orders canister ids byte-wise.
func (c CanisterID) Compare(other CanisterID) int { return c.principal.Compare(other.principal) }

// String returns the textual principal form.
func (c CanisterID) String() string { return c.principal.String() }

// MarshalText implements encoding.TextMarshaler.
func (c CanisterID) MarshalText() ([]byte, error) { return c.principal.MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CanisterID) UnmarshalText(data []byte) error { return c.principal.UnmarshalText(data) }

// Principal returns the underlying principal.
func (s SubnetID) Principal() PrincipalID { return s.principal }

// Compare orders subnet ids byte-wise.
func (s SubnetID) Compare(other SubnetID) int { return s.principal.Compare(other.principal) }

// IsZero reports whether s is the empty principal.
func (s SubnetID) IsZero() bool { return s.principal.IsManagementCanister() }

// String returns the textual principal form.
func (s SubnetID) String() string { return s.principal.String() }

// MarshalText implements encoding.TextMarshaler.
func (s SubnetID) MarshalText() ([]byte, error) { return s.principal.MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SubnetID) UnmarshalText(data []byte) error { return s.principal.UnmarshalText(data) }

// Principal returns the underlying principal.
func (u UserID) Principal() PrincipalID { return u.principal }

// String returns the textual principal form.
func (u UserID) String() string { return u.principal.String() }

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) { return u.principal.MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UserID) UnmarshalText(data []byte) error { return u.principal.UnmarshalText(data) }

// Principal returns the underlying principal.
func (n NodeID) Principal() PrincipalID { return n.principal }

// Compare orders node ids byte-wise.
func (n NodeID) Compare(other NodeID) int { return n.principal.Compare(other.principal) }

// String returns the textual principal form.
func (n NodeID) String() string { return n.principal.String() }

// MarshalText implements encoding.TextMarshaler.
func (n NodeID) MarshalText() ([]byte, error) { return n.principal.MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NodeID) UnmarshalText(data []byte) error { return n.principal.UnmarshalText(data) }
