// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/topology"
)

// Socket actions served by the resolver service.
const (
	ActionResolve = "resolve"
	ActionStatus  = "status"
	ActionMethods = "methods"
	ActionHistory = "history"
)

// ResolveRequest asks the service for the destination of one call.
type ResolveRequest struct {
	// Method is the management method name, as received.
	Method string `cbor:"method"`

	// Payload is the encoded argument record.
	Payload []byte `cbor:"payload,omitempty"`

	// Receiver is the call's receiver. Absent means the management
	// canister.
	Receiver *ref.PrincipalID `cbor:"receiver,omitempty"`

	// OwnSubnet overrides the service's configured own subnet.
	OwnSubnet *ref.SubnetID `cbor:"own_subnet,omitempty"`
}

// Fields returns the request as the field map sent by service.Client.
func (r *ResolveRequest) Fields() map[string]any {
	fields := map[string]any{"method": r.Method}
	if len(r.Payload) > 0 {
		fields["payload"] = r.Payload
	}
	if r.Receiver != nil {
		fields["receiver"] = *r.Receiver
	}
	if r.OwnSubnet != nil {
		fields["own_subnet"] = *r.OwnSubnet
	}
	return fields
}

// ResolveResponse is the destination of a resolved call and the
// topology snapshot it was resolved against.
type ResolveResponse struct {
	Destination         ref.PrincipalID      `cbor:"destination" json:"destination"`
	Class               string               `cbor:"class" json:"class"`
	TopologyFingerprint topology.Fingerprint `cbor:"topology_fingerprint" json:"topology_fingerprint"`
}

// StatusResponse describes the service's current topology snapshot.
type StatusResponse struct {
	Version     string               `cbor:"version" json:"version"`
	OwnSubnet   ref.SubnetID         `cbor:"own_subnet" json:"own_subnet"`
	Fingerprint topology.Fingerprint `cbor:"fingerprint" json:"fingerprint"`
	Source      string               `cbor:"source" json:"source"`
	Subnets     int                  `cbor:"subnets" json:"subnets"`
	Ranges      int                  `cbor:"ranges" json:"ranges"`
	SigningKeys int                  `cbor:"signing_keys" json:"signing_keys"`

	// LoadedAt is when the snapshot was loaded, in Unix seconds.
	LoadedAt int64 `cbor:"loaded_at" json:"loaded_at"`

	// UptimeSeconds is how long the service has been running.
	UptimeSeconds int64 `cbor:"uptime_seconds" json:"uptime_seconds"`

	// Issues lists the snapshot's consistency problems, rendered.
	Issues []string `cbor:"issues,omitempty" json:"issues"`
}

// MethodInfo is one entry of the methods action's response.
type MethodInfo struct {
	Name  string `cbor:"name" json:"name"`
	Class string `cbor:"class" json:"class"`
}

// HistoryRequest asks for the most recently published snapshots.
type HistoryRequest struct {
	// Limit caps the number of entries. Zero returns every retained
	// entry.
	Limit int `cbor:"limit,omitempty"`
}

// HistoryEntry is one published snapshot, newest first in responses.
type HistoryEntry struct {
	Fingerprint topology.Fingerprint `cbor:"fingerprint" json:"fingerprint"`
	Source      string               `cbor:"source" json:"source"`

	// LoadedAt is when the snapshot was loaded, in Unix seconds.
	LoadedAt int64 `cbor:"loaded_at" json:"loaded_at"`

	Subnets     int `cbor:"subnets" json:"subnets"`
	Ranges      int `cbor:"ranges" json:"ranges"`
	SigningKeys int `cbor:"signing_keys" json:"signing_keys"`
	Issues      int `cbor:"issues" json:"issues"`
}
