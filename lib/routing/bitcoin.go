// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/topology"
)

// RouteBitcoin returns the destination of a Bitcoin request. It never
// fails.
//
// Testnet and regtest requests go to the testnet bridge canister if one
// is configured and currently present in the routing table, else to
// the first subnet with the testnet feature enabled, else to ownSubnet.
//
// Mainnet requests go to the mainnet bridge canister whenever one is
// configured, without checking the routing table, else to ownSubnet in
// its canister-addressable form.
func RouteBitcoin(network mgmt.BitcoinNetwork, t *topology.NetworkTopology, ownSubnet ref.SubnetID) ref.PrincipalID {
	t = orEmpty(t)
	if network.IsTest() {
		if bridge := t.BitcoinTestnetCanisterID; bridge != nil {
			if _, exists := t.RoutingTable.Route(bridge.Principal()); exists {
				return bridge.Principal()
			}
		}
		if subnets := t.BitcoinTestnetSubnets(); len(subnets) > 0 {
			return subnets[0].Principal()
		}
		return ownSubnet.Principal()
	}

	if bridge := t.BitcoinMainnetCanisterID; bridge != nil {
		return bridge.Principal()
	}
	return ref.CanisterIDFromSubnet(ownSubnet).Principal()
}
