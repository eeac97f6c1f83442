// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references for
// the network: principals and the role-tagged identifiers built on top
// of them (canisters, subnets, users, nodes).
//
// A [PrincipalID] is an opaque byte string of at most 29 bytes. The last
// byte of a non-empty principal is its class tag: opaque (0x01, used by
// canister ids), self-authenticating (0x02, derived from a public key),
// derived (0x03) and anonymous (0x04). The empty principal is the
// management canister, [ManagementCanisterID].
//
// Role types ([CanisterID], [SubnetID], [UserID], [NodeID]) wrap a
// PrincipalID and are distinct Go types, so a subnet id can never be
// passed where a canister id is expected. Crossing roles is always an
// explicit call ([CanisterIDFromSubnet], [NewSubnetID], ...). Nothing in
// this package validates that a principal actually plays the claimed
// role: callers construct role ids from trusted sources (the topology,
// decoded payloads).
//
// All identifier types are comparable values usable as map keys and
// order byte-wise via Compare.
//
// The canonical serialization form is the textual principal encoding:
// lower-case base32 of crc32(bytes) followed by the bytes, split into
// dash-separated groups of five characters ("aaaaa-aa",
// "rwlgt-iiaaa-aaaaa-aaaaa-cai"). JSON, YAML and CBOR marshaling use
// this form via encoding.TextMarshaler.
package ref
