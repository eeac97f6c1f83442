// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package reftest builds deterministic identifiers for tests. Each
// constructor maps a small integer to a distinct, stable id of the
// requested role, so tests can write reftest.SubnetID(0) instead of
// spelling out textual principals.
package reftest

import (
	"encoding/binary"

	"github.com/sysroute/sysroute/lib/ref"
)

// Role prefixes keep ids of different roles distinct even when built
// from the same integer.
const (
	subnetPrefix = "subnet:"
	nodePrefix   = "node:"
	userPrefix   = "user:"
)

// SubnetID returns the n-th test subnet id (a self-authenticating
// principal).
func SubnetID(n uint64) ref.SubnetID {
	return ref.NewSubnetID(selfAuthenticating(subnetPrefix, n))
}

// NodeID returns the n-th test node id.
func NodeID(n uint64) ref.NodeID {
	return ref.NewNodeID(selfAuthenticating(nodePrefix, n))
}

// UserID returns the n-th test user id.
func UserID(n uint64) ref.UserID {
	return ref.NewUserID(selfAuthenticating(userPrefix, n))
}

// CanisterID returns the canister id allocated from sequence number n.
func CanisterID(n uint64) ref.CanisterID {
	return ref.CanisterIDFromU64(n)
}

func selfAuthenticating(prefix string, n uint64) ref.PrincipalID {
	key := binary.LittleEndian.AppendUint64([]byte(prefix), n)
	return ref.NewSelfAuthenticating(key)
}
