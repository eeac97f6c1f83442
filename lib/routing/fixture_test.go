// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package routing_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/ref/reftest"
	"github.com/sysroute/sysroute/lib/topology"
)

var (
	someKey  = mgmt.MustParseEcdsaKeyID("secp256k1:some_key")
	otherKey = mgmt.MustParseEcdsaKeyID("secp256k1:other_key")
)

// networkWithEcdsaSubnets: subnets 0 and 1 both hold some_key, but
// only subnet 0 is enabled to sign with it. Only subnet 0 holds
// other_key, and nobody signs with it. Subnet 2 holds nothing.
func networkWithEcdsaSubnets() *topology.NetworkTopology {
	network := topology.New()
	network.EcdsaSigningSubnets[someKey] = []ref.SubnetID{reftest.SubnetID(0)}
	network.Subnets[reftest.SubnetID(0)] = &topology.SubnetTopology{
		EcdsaKeysHeld: keySet(someKey, otherKey),
	}
	network.Subnets[reftest.SubnetID(1)] = &topology.SubnetTopology{
		EcdsaKeysHeld: keySet(someKey),
	}
	network.Subnets[reftest.SubnetID(2)] = &topology.SubnetTopology{}
	return network
}

// networkWithRanges assigns canister ids [0x000, 0x0FF] to subnet 0 and
// [0x100, 0x1FF] to subnet 1.
func networkWithRanges(t *testing.T) *topology.NetworkTopology {
	t.Helper()
	network := topology.New()
	for i := range uint64(2) {
		network.Subnets[reftest.SubnetID(i)] = &topology.SubnetTopology{}
		r := topology.CanisterIDRange{
			Start: ref.CanisterIDFromU64(i * 0x100),
			End:   ref.CanisterIDFromU64(i*0x100 + 0xFF),
		}
		if err := network.RoutingTable.Insert(r, reftest.SubnetID(i)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	return network
}

func keySet(keys ...mgmt.EcdsaKeyID) map[mgmt.EcdsaKeyID]struct{} {
	set := make(map[mgmt.EcdsaKeyID]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// sortedSubnets returns test subnets n... in ascending id order. Test
// ids are hashes, so their order is not their index order.
func sortedSubnets(indexes ...uint64) []ref.SubnetID {
	subnets := make([]ref.SubnetID, len(indexes))
	for i, index := range indexes {
		subnets[i] = reftest.SubnetID(index)
	}
	slices.SortFunc(subnets, ref.SubnetID.Compare)
	return subnets
}

func mustEncode(t *testing.T, args mgmt.Args) []byte {
	t.Helper()
	payload, err := mgmt.Encode(args)
	if err != nil {
		t.Fatalf("Encode(%T): %v", args, err)
	}
	return payload
}

func computeInitialEcdsaDealingsRequest(t *testing.T, key mgmt.EcdsaKeyID, subnet ref.SubnetID) []byte {
	return mustEncode(t, &mgmt.ComputeInitialEcdsaDealingsArgs{
		KeyID:           key,
		SubnetID:        subnet,
		Nodes:           []ref.NodeID{reftest.NodeID(0)},
		RegistryVersion: 100,
	})
}

func signRequest(t *testing.T, key mgmt.EcdsaKeyID) []byte {
	return mustEncode(t, &mgmt.SignWithECDSAArgs{
		MessageHash:    bytes.Repeat([]byte{1}, 32),
		DerivationPath: [][]byte{make([]byte, 10)},
		KeyID:          key,
	})
}

func publicKeyRequest(t *testing.T, key mgmt.EcdsaKeyID) []byte {
	canister := reftest.CanisterID(1)
	return mustEncode(t, &mgmt.ECDSAPublicKeyArgs{
		CanisterID:     &canister,
		DerivationPath: [][]byte{make([]byte, 10)},
		KeyID:          key,
	})
}
