// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
)

// Document is the serialized form of a NetworkTopology. Every list is
// ordered (subnets and signing entries by id or key, ranges by start),
// so the same topology always produces the same document.
//
// Field names follow the json tags in every format; CBOR falls back to
// the json tag. ECDSA keys are written in their display form
// ("Secp256k1:some_key").
type Document struct {
	NNSSubnet              *ref.SubnetID    `json:"nns_subnet,omitempty" yaml:"nns_subnet,omitempty"`
	Subnets                []SubnetDocument `json:"subnets" yaml:"subnets"`
	RoutingTable           []RouteDocument  `json:"routing_table" yaml:"routing_table"`
	EcdsaSigningSubnets    []SigningEntry   `json:"ecdsa_signing_subnets,omitempty" yaml:"ecdsa_signing_subnets,omitempty"`
	BitcoinTestnetCanister *ref.CanisterID  `json:"bitcoin_testnet_canister_id,omitempty" yaml:"bitcoin_testnet_canister_id,omitempty"`
	BitcoinMainnetCanister *ref.CanisterID  `json:"bitcoin_mainnet_canister_id,omitempty" yaml:"bitcoin_mainnet_canister_id,omitempty"`
}

// SubnetDocument is one entry of Document.Subnets.
type SubnetDocument struct {
	ID             ref.SubnetID         `json:"id" yaml:"id"`
	Type           SubnetType           `json:"type" yaml:"type"`
	Nodes          []ref.NodeID         `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	BitcoinTestnet BitcoinFeatureStatus `json:"bitcoin_testnet" yaml:"bitcoin_testnet"`
	EcdsaKeysHeld  []string             `json:"ecdsa_keys_held,omitempty" yaml:"ecdsa_keys_held,omitempty"`
}

// RouteDocument is one entry of Document.RoutingTable.
type RouteDocument struct {
	Start  ref.CanisterID `json:"start" yaml:"start"`
	End    ref.CanisterID `json:"end" yaml:"end"`
	Subnet ref.SubnetID   `json:"subnet" yaml:"subnet"`
}

// SigningEntry is one entry of the ECDSA signing index.
type SigningEntry struct {
	Key     string         `json:"key" yaml:"key"`
	Subnets []ref.SubnetID `json:"subnets" yaml:"subnets"`
}

// Build converts the document into a topology. Returns an error
// describing every structural problem found: duplicate subnets or
// signing keys, unparseable key ids, overlapping ranges. Consistency
// between the parts is not checked here; see NetworkTopology.Check.
func (d *Document) Build() (*NetworkTopology, error) {
	topology := New()
	var errs []error

	if d.NNSSubnet != nil {
		topology.NNSSubnetID = *d.NNSSubnet
	}

	for _, subnet := range d.Subnets {
		if _, exists := topology.Subnets[subnet.ID]; exists {
			errs = append(errs, fmt.Errorf("subnet %s listed more than once", subnet.ID))
			continue
		}
		held := make(map[mgmt.EcdsaKeyID]struct{}, len(subnet.EcdsaKeysHeld))
		for _, text := range subnet.EcdsaKeysHeld {
			key, err := mgmt.ParseEcdsaKeyID(text)
			if err != nil {
				errs = append(errs, fmt.Errorf("subnet %s: %w", subnet.ID, err))
				continue
			}
			held[key] = struct{}{}
		}
		topology.Subnets[subnet.ID] = &SubnetTopology{
			SubnetType:    subnet.Type,
			Nodes:         slices.Clone(subnet.Nodes),
			Features:      SubnetFeatures{BitcoinTestnet: subnet.BitcoinTestnet},
			EcdsaKeysHeld: held,
		}
	}

	for _, route := range d.RoutingTable {
		if err := topology.RoutingTable.Insert(CanisterIDRange{Start: route.Start, End: route.End}, route.Subnet); err != nil {
			errs = append(errs, fmt.Errorf("routing table: %w", err))
		}
	}

	for _, entry := range d.EcdsaSigningSubnets {
		key, err := mgmt.ParseEcdsaKeyID(entry.Key)
		if err != nil {
			errs = append(errs, fmt.Errorf("signing index: %w", err))
			continue
		}
		if _, exists := topology.EcdsaSigningSubnets[key]; exists {
			errs = append(errs, fmt.Errorf("signing index: key %s listed more than once", key))
			continue
		}
		topology.EcdsaSigningSubnets[key] = slices.Clone(entry.Subnets)
	}

	if d.BitcoinTestnetCanister != nil {
		canister := *d.BitcoinTestnetCanister
		topology.BitcoinTestnetCanisterID = &canister
	}
	if d.BitcoinMainnetCanister != nil {
		canister := *d.BitcoinMainnetCanister
		topology.BitcoinMainnetCanisterID = &canister
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid topology document: %w", err)
	}
	return topology, nil
}

// NewDocument converts a topology into its canonical document.
func NewDocument(t *NetworkTopology) *Document {
	document := &Document{
		Subnets:      make([]SubnetDocument, 0, len(t.Subnets)),
		RoutingTable: make([]RouteDocument, 0, t.RoutingTable.Len()),
	}
	if !t.NNSSubnetID.IsZero() {
		nns := t.NNSSubnetID
		document.NNSSubnet = &nns
	}

	for _, id := range t.SortedSubnetIDs() {
		subnet := t.Subnets[id]
		if subnet == nil {
			subnet = &SubnetTopology{}
		}
		var held []string
		for _, key := range subnet.HeldKeys() {
			held = append(held, key.String())
		}
		document.Subnets = append(document.Subnets, SubnetDocument{
			ID:             id,
			Type:           subnet.SubnetType,
			Nodes:          slices.Clone(subnet.Nodes),
			BitcoinTestnet: subnet.Features.BitcoinTestnet,
			EcdsaKeysHeld:  held,
		})
	}

	for _, entry := range t.RoutingTable.Entries() {
		document.RoutingTable = append(document.RoutingTable, RouteDocument{
			Start:  entry.Range.Start,
			End:    entry.Range.End,
			Subnet: entry.Subnet,
		})
	}

	for _, key := range t.SigningKeys() {
		document.EcdsaSigningSubnets = append(document.EcdsaSigningSubnets, SigningEntry{
			Key:     key.String(),
			Subnets: slices.Clone(t.EcdsaSigningSubnets[key]),
		})
	}

	if t.BitcoinTestnetCanisterID != nil {
		canister := *t.BitcoinTestnetCanisterID
		document.BitcoinTestnetCanister = &canister
	}
	if t.BitcoinMainnetCanisterID != nil {
		canister := *t.BitcoinMainnetCanisterID
		document.BitcoinMainnetCanister = &canister
	}
	return document
}
