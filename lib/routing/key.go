// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/topology"
)

// RouteKey returns the subnet that should serve a request for key.
//
// With a requested subnet, that subnet is returned if it holds the key.
// signingRequired is not consulted: an explicit request is honored on
// custody alone.
//
// Without one, the key's first designated signer wins. If the key has
// no signer and signingRequired is set, routing fails. Otherwise the
// first subnet in ascending id order that holds the key is returned,
// whether or not it may sign.
func RouteKey(key mgmt.EcdsaKeyID, t *topology.NetworkTopology, requested *ref.SubnetID, signingRequired bool) (ref.PrincipalID, error) {
	t = orEmpty(t)
	if requested != nil {
		subnet := t.Subnet(*requested)
		if subnet == nil {
			return ref.PrincipalID{}, &EcdsaKeyError{
				Kind:   EcdsaUnknownSubnet,
				Key:    key,
				Subnet: *requested,
			}
		}
		if !subnet.HoldsKey(key) {
			return ref.PrincipalID{}, &EcdsaKeyError{
				Kind:   EcdsaKeyNotHeld,
				Key:    key,
				Subnet: *requested,
				Keys:   subnet.HeldKeys(),
			}
		}
		return requested.Principal(), nil
	}

	if signers := t.EcdsaSigningSubnetsFor(key); len(signers) > 0 {
		return signers[0].Principal(), nil
	}

	if signingRequired {
		return ref.PrincipalID{}, &EcdsaKeyError{
			Kind: EcdsaNoSigningSubnet,
			Key:  key,
			Keys: t.SigningKeys(),
		}
	}

	for _, id := range t.SortedSubnetIDs() {
		if t.Subnet(id).HoldsKey(key) {
			return id.Principal(), nil
		}
	}
	return ref.PrincipalID{}, &EcdsaKeyError{
		Kind: EcdsaKeyNotFound,
		Key:  key,
		Keys: t.HeldKeys(),
	}
}
