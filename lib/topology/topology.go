// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"fmt"
	"maps"
	"slices"

	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
)

// SubnetType is the kind of a subnet.
type SubnetType uint8

const (
	SubnetTypeApplication SubnetType = iota
	SubnetTypeSystem
	SubnetTypeVerifiedApplication
)

var subnetTypeNames = map[SubnetType]string{
	SubnetTypeApplication:         "application",
	SubnetTypeSystem:              "system",
	SubnetTypeVerifiedApplication: "verified_application",
}

func (t SubnetType) String() string {
	if name, ok := subnetTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SubnetType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t SubnetType) MarshalText() ([]byte, error) {
	name, ok := subnetTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SubnetType) UnmarshalText(data []byte) error {
	for subnetType, name := range subnetTypeNames {
		if name == string(data) {
			*t = subnetType
			return nil
		}
	}
	return fmt.Errorf("unknown subnet type %q", data)
}

// BitcoinFeatureStatus is the state of a subnet's Bitcoin integration.
// Only FeatureEnabled makes a subnet a Bitcoin routing target.
type BitcoinFeatureStatus uint8

const (
	FeatureDisabled BitcoinFeatureStatus = iota
	FeatureSyncing
	FeaturePaused
	FeatureEnabled
)

var featureStatusNames = map[BitcoinFeatureStatus]string{
	FeatureDisabled: "disabled",
	FeatureSyncing:  "syncing",
	FeaturePaused:   "paused",
	FeatureEnabled:  "enabled",
}

func (s BitcoinFeatureStatus) String() string {
	if name, ok := featureStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BitcoinFeatureStatus(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s BitcoinFeatureStatus) MarshalText() ([]byte, error) {
	name, ok := featureStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BitcoinFeatureStatus) UnmarshalText(data []byte) error {
	for status, name := range featureStatusNames {
		if name == string(data) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown bitcoin feature status %q", data)
}

// SubnetFeatures are the optional features of a subnet.
type SubnetFeatures struct {
	BitcoinTestnet BitcoinFeatureStatus
}

// SubnetTopology describes one subnet.
type SubnetTopology struct {
	SubnetType SubnetType
	Nodes      []ref.NodeID
	Features   SubnetFeatures

	// EcdsaKeysHeld is the set of threshold ECDSA keys whose shares
	// this subnet holds. Holding a key does not mean the subnet is
	// enabled to sign with it; see NetworkTopology.EcdsaSigningSubnets.
	EcdsaKeysHeld map[mgmt.EcdsaKeyID]struct{}
}

// HoldsKey reports whether the subnet holds shares of key. A nil
// subnet holds nothing.
func (s *SubnetTopology) HoldsKey(key mgmt.EcdsaKeyID) bool {
	if s == nil {
		return false
	}
	_, ok := s.EcdsaKeysHeld[key]
	return ok
}

// HeldKeys returns the held keys sorted by curve and name.
func (s *SubnetTopology) HeldKeys() []mgmt.EcdsaKeyID {
	if s == nil {
		return nil
	}
	return mgmt.SortEcdsaKeyIDs(slices.Collect(maps.Keys(s.EcdsaKeysHeld)))
}

// NetworkTopology is a point-in-time view of the network.
type NetworkTopology struct {
	Subnets      map[ref.SubnetID]*SubnetTopology
	RoutingTable RoutingTable

	// NNSSubnetID is the subnet hosting the network governance
	// canisters. Zero when unknown.
	NNSSubnetID ref.SubnetID

	// EcdsaSigningSubnets maps each key to the subnets enabled to sign
	// with it, in priority order. The first entry is the active
	// signer. A key with an empty list is known but has no signer.
	EcdsaSigningSubnets map[mgmt.EcdsaKeyID][]ref.SubnetID

	// Well-known Bitcoin bridge canisters. Nil when not configured.
	BitcoinTestnetCanisterID *ref.CanisterID
	BitcoinMainnetCanisterID *ref.CanisterID
}

// New returns an empty topology with its maps allocated.
func New() *NetworkTopology {
	return &NetworkTopology{
		Subnets:             make(map[ref.SubnetID]*SubnetTopology),
		EcdsaSigningSubnets: make(map[mgmt.EcdsaKeyID][]ref.SubnetID),
	}
}

// Subnet returns the topology of the given subnet, or nil if the
// subnet is unknown.
func (t *NetworkTopology) Subnet(id ref.SubnetID) *SubnetTopology {
	return t.Subnets[id]
}

// SortedSubnetIDs returns every known subnet id in ascending order.
func (t *NetworkTopology) SortedSubnetIDs() []ref.SubnetID {
	ids := slices.Collect(maps.Keys(t.Subnets))
	slices.SortFunc(ids, ref.SubnetID.Compare)
	return ids
}

// EcdsaSigningSubnetsFor returns the subnets enabled to sign with key,
// in priority order. Returns nil for a key with no signers.
func (t *NetworkTopology) EcdsaSigningSubnetsFor(key mgmt.EcdsaKeyID) []ref.SubnetID {
	return t.EcdsaSigningSubnets[key]
}

// SigningKeys returns every key present in the signing index, sorted,
// including keys whose signer list is empty.
func (t *NetworkTopology) SigningKeys() []mgmt.EcdsaKeyID {
	return mgmt.SortEcdsaKeyIDs(slices.Collect(maps.Keys(t.EcdsaSigningSubnets)))
}

// HeldKeys returns the sorted union of the keys held by all subnets.
func (t *NetworkTopology) HeldKeys() []mgmt.EcdsaKeyID {
	var keys []mgmt.EcdsaKeyID
	for _, subnet := range t.Subnets {
		if subnet == nil {
			continue
		}
		for key := range subnet.EcdsaKeysHeld {
			keys = append(keys, key)
		}
	}
	return mgmt.SortEcdsaKeyIDs(keys)
}

// BitcoinTestnetSubnets returns the subnets with the Bitcoin testnet
// feature enabled, in ascending id order.
func (t *NetworkTopology) BitcoinTestnetSubnets() []ref.SubnetID {
	var subnets []ref.SubnetID
	for _, id := range t.SortedSubnetIDs() {
		if subnet := t.Subnets[id]; subnet != nil && subnet.Features.BitcoinTestnet == FeatureEnabled {
			subnets = append(subnets, id)
		}
	}
	return subnets
}

// IssueKind classifies a topology inconsistency.
type IssueKind string

const (
	// IssueUnknownSigner: the signing index names a subnet that is not
	// in the subnet map.
	IssueUnknownSigner IssueKind = "unknown_signer"

	// IssueSignerMissingKey: a signing subnet does not hold the key it
	// signs with.
	IssueSignerMissingKey IssueKind = "signer_missing_key"

	// IssueUnknownOwner: the routing table assigns a range to a subnet
	// that is not in the subnet map.
	IssueUnknownOwner IssueKind = "unknown_owner"

	// IssueUnroutedBridge: a configured Bitcoin bridge canister is not
	// in any routing table range.
	IssueUnroutedBridge IssueKind = "unrouted_bridge"
)

// Issue is one inconsistency found by Check.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	return string(i.Kind) + ": " + i.Detail
}

// Check reports disagreements between the parts of the topology. An
// empty result means the snapshot is consistent. Issues are ordered
// deterministically. Routing works on inconsistent snapshots; Check is
// for diagnostics.
func (t *NetworkTopology) Check() []Issue {
	var issues []Issue

	for _, key := range t.SigningKeys() {
		for _, subnetID := range t.EcdsaSigningSubnets[key] {
			subnet, known := t.Subnets[subnetID]
			switch {
			case !known:
				issues = append(issues, Issue{
					Kind:   IssueUnknownSigner,
					Detail: fmt.Sprintf("key %s is signed by unknown subnet %s", key, subnetID),
				})
			case !subnet.HoldsKey(key):
				issues = append(issues, Issue{
					Kind:   IssueSignerMissingKey,
					Detail: fmt.Sprintf("subnet %s signs with key %s but does not hold it", subnetID, key),
				})
			}
		}
	}

	for _, subnetID := range t.RoutingTable.Subnets() {
		if _, known := t.Subnets[subnetID]; !known {
			issues = append(issues, Issue{
				Kind:   IssueUnknownOwner,
				Detail: fmt.Sprintf("routing table assigns ranges to unknown subnet %s", subnetID),
			})
		}
	}

	for _, bridge := range []struct {
		name     string
		canister *ref.CanisterID
	}{
		{name: "testnet", canister: t.BitcoinTestnetCanisterID},
		{name: "mainnet", canister: t.BitcoinMainnetCanisterID},
	} {
		if bridge.canister == nil {
			continue
		}
		if _, ok := t.RoutingTable.Route(bridge.canister.Principal()); !ok {
			issues = append(issues, Issue{
				Kind:   IssueUnroutedBridge,
				Detail: fmt.Sprintf("bitcoin %s canister %s is not in the routing table", bridge.name, bridge.canister),
			})
		}
	}

	return issues
}
