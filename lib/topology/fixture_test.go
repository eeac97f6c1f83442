// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology_test

import (
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

// sampleTopology has three subnets. Subnet 0 holds both keys and signs
// with some_key; subnet 1 holds some_key and has the Bitcoin testnet
// feature; subnet 2 holds nothing. Each owns one range of 256 ids.
func sampleTopology(t *testing.T) *topology.NetworkTopology {
	t.Helper()
	network := topology.New()
	network.NNSSubnetID = reftest.SubnetID(0)
	network.Subnets[reftest.SubnetID(0)] = &topology.SubnetTopology{
		SubnetType:    topology.SubnetTypeSystem,
		Nodes:         []ref.NodeID{reftest.NodeID(0), reftest.NodeID(1)},
		EcdsaKeysHeld: keySet(someKey, otherKey),
	}
	network.Subnets[reftest.SubnetID(1)] = &topology.SubnetTopology{
		SubnetType:    topology.SubnetTypeApplication,
		Nodes:         []ref.NodeID{reftest.NodeID(2)},
		Features:      topology.SubnetFeatures{BitcoinTestnet: topology.FeatureEnabled},
		EcdsaKeysHeld: keySet(someKey),
	}
	network.Subnets[reftest.SubnetID(2)] = &topology.SubnetTopology{
		SubnetType: topology.SubnetTypeVerifiedApplication,
	}
	network.EcdsaSigningSubnets[someKey] = []ref.SubnetID{reftest.SubnetID(0)}

	for i := range uint64(3) {
		r := topology.CanisterIDRange{
			Start: ref.CanisterIDFromU64(i * 0x100),
			End:   ref.CanisterIDFromU64(i*0x100 + 0xFF),
		}
		if err := network.RoutingTable.Insert(r, reftest.SubnetID(i)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	testnet := ref.CanisterIDFromU64(0x1FF)
	network.BitcoinTestnetCanisterID = &testnet
	return network
}

func keySet(keys ...mgmt.EcdsaKeyID) map[mgmt.EcdsaKeyID]struct{} {
	set := make(map[mgmt.EcdsaKeyID]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

func mustFingerprint(t *testing.T, network *topology.NetworkTopology) topology.Fingerprint {
	t.Helper()
	fingerprint, err := topology.ComputeFingerprint(network)
	if err != nil {
		t.Fatalf("ComputeFingerprint: %v", err)
	}
	return fingerprint
}
