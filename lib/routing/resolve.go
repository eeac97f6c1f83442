// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"fmt"

	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/topology"
)

// Class is a method's routing strategy.
type Class uint8

const (
	// ClassOwnSubnet methods execute on the caller's own subnet.
	ClassOwnSubnet Class = iota + 1

	// ClassCanister methods execute where their target canister lives.
	ClassCanister

	// ClassBitcoin methods go to a Bitcoin bridge.
	ClassBitcoin

	// ClassEcdsa methods go to a subnet holding a threshold key.
	ClassEcdsa
)

func (c Class) String() string {
	switch c {
	case ClassOwnSubnet:
		return "own_subnet"
	case ClassCanister:
		return "canister"
	case ClassBitcoin:
		return "bitcoin"
	case ClassEcdsa:
		return "ecdsa"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// call is one resolution in progress.
type call struct {
	topology  *topology.NetworkTopology
	method    mgmt.Method
	payload   []byte
	ownSubnet ref.SubnetID
}

type resolver func(c call) (ref.PrincipalID, error)

type route struct {
	method  mgmt.Method
	class   Class
	resolve resolver
}

// routes has exactly one entry per method, in mgmt.Method order. The
// two array declarations below fail to compile when the table and the
// method set differ in size; init checks the order.
var routes = [...]route{
	{mgmt.CreateCanister, ClassOwnSubnet, toOwnSubnet},
	{mgmt.UpdateSettings, ClassCanister, viaCanister(func(a *mgmt.UpdateSettingsArgs) ref.CanisterID { return a.CanisterID })},
	{mgmt.InstallCode, ClassCanister, viaCanister(func(a *mgmt.InstallCodeArgs) ref.CanisterID { return a.CanisterID })},
	{mgmt.CanisterStatus, ClassCanister, viaCanister(recordCanister)},
	{mgmt.StartCanister, ClassCanister, viaCanister(recordCanister)},
	{mgmt.StopCanister, ClassCanister, viaCanister(recordCanister)},
	{mgmt.DeleteCanister, ClassCanister, viaCanister(recordCanister)},
	{mgmt.UninstallCode, ClassCanister, viaCanister(recordCanister)},
	{mgmt.DepositCycles, ClassCanister, viaCanister(recordCanister)},
	{mgmt.RawRand, ClassOwnSubnet, toOwnSubnet},
	{mgmt.SetController, ClassCanister, viaCanister(func(a *mgmt.SetControllerArgs) ref.CanisterID { return a.CanisterID })},
	{mgmt.HTTPRequest, ClassOwnSubnet, toOwnSubnet},
	// Only the governance subnet may call setup_initial_dkg. The
	// caller enforces that; here it is an own-subnet method.
	{mgmt.SetupInitialDKG, ClassOwnSubnet, toOwnSubnet},
	{mgmt.ECDSAPublicKey, ClassEcdsa, ecdsaPublicKey},
	{mgmt.SignWithECDSA, ClassEcdsa, signWithECDSA},
	{mgmt.ComputeInitialEcdsaDealings, ClassEcdsa, computeInitialEcdsaDealings},
	{mgmt.BitcoinGetBalance, ClassBitcoin, viaBitcoin(func(a *mgmt.BitcoinGetBalanceArgs) mgmt.BitcoinNetwork { return a.Network })},
	{mgmt.BitcoinGetUtxos, ClassBitcoin, viaBitcoin(func(a *mgmt.BitcoinGetUtxosArgs) mgmt.BitcoinNetwork { return a.Network })},
	{mgmt.BitcoinSendTransaction, ClassBitcoin, viaBitcoin(func(a *mgmt.BitcoinSendTransactionArgs) mgmt.BitcoinNetwork { return a.Network })},
	{mgmt.BitcoinGetCurrentFeePercentiles, ClassBitcoin, viaBitcoin(func(a *mgmt.BitcoinGetCurrentFeePercentilesArgs) mgmt.BitcoinNetwork { return a.Network })},
	{mgmt.BitcoinSendTransactionInternal, ClassOwnSubnet, toOwnSubnet},
	{mgmt.BitcoinGetSuccessors, ClassOwnSubnet, toOwnSubnet},
	{mgmt.ProvisionalCreateCanisterWithCycles, ClassOwnSubnet, toOwnSubnet},
	{mgmt.ProvisionalTopUpCanister, ClassCanister, viaCanister(func(a *mgmt.ProvisionalTopUpCanisterArgs) ref.CanisterID { return a.CanisterID })},
}

var (
	_ [len(routes) - int(mgmt.MethodCount)]struct{}
	_ [int(mgmt.MethodCount) - len(routes)]struct{}
)

func init() {
	for i, r := range routes {
		if r.method != mgmt.Method(i) {
			panic(fmt.Sprintf("routing: route %d is for %s, want %s", i, r.method, mgmt.Method(i)))
		}
	}
}

// Resolve returns the destination of a management call: the principal
// of the subnet (or bridge canister) that must execute methodName with
// payload, for a caller on ownSubnet.
//
// A nil topology is treated as empty.
func Resolve(t *topology.NetworkTopology, methodName string, payload []byte, ownSubnet ref.SubnetID) (ref.PrincipalID, error) {
	method, ok := mgmt.ParseMethod(methodName)
	if !ok {
		return ref.PrincipalID{}, &MethodNotFoundError{Method: methodName}
	}
	return routes[method].resolve(call{
		topology:  orEmpty(t),
		method:    method,
		payload:   payload,
		ownSubnet: ownSubnet,
	})
}

// ResolveCall resolves a call addressed to receiver. Calls to the
// management canister are resolved with Resolve. Any other receiver is
// already a destination: the result is an *AlreadyResolvedError
// carrying it, and the caller delivers to that principal directly.
func ResolveCall(t *topology.NetworkTopology, receiver ref.PrincipalID, methodName string, payload []byte, ownSubnet ref.SubnetID) (ref.PrincipalID, error) {
	if !receiver.IsManagementCanister() {
		return ref.PrincipalID{}, &AlreadyResolvedError{Destination: receiver}
	}
	return Resolve(t, methodName, payload, ownSubnet)
}

// MethodRoute describes how a method is routed.
type MethodRoute struct {
	Method mgmt.Method
	Class  Class
}

// Routes returns the route of every method in mgmt.Method order.
func Routes() []MethodRoute {
	described := make([]MethodRoute, len(routes))
	for i, r := range routes {
		described[i] = MethodRoute{Method: r.method, Class: r.class}
	}
	return described
}

// ClassOf returns the routing class of method.
func ClassOf(method mgmt.Method) (Class, bool) {
	if !method.Valid() {
		return 0, false
	}
	return routes[method].class, true
}

var emptyTopology = topology.New()

func orEmpty(t *topology.NetworkTopology) *topology.NetworkTopology {
	if t == nil {
		return emptyTopology
	}
	return t
}

func toOwnSubnet(c call) (ref.PrincipalID, error) {
	return c.ownSubnet.Principal(), nil
}

func recordCanister(a *mgmt.CanisterIDRecord) ref.CanisterID { return a.CanisterID }

// decode decodes the payload as the record of c.method.
func decode[T any, PT interface {
	*T
	mgmt.Args
}](c call) (*T, error) {
	args, err := mgmt.Decode[T, PT](c.payload)
	if err != nil {
		return nil, &DecodeError{Method: c.method, Err: err}
	}
	return &args, nil
}

// viaCanister routes to the subnet owning the canister that target
// extracts from the decoded record.
func viaCanister[T any, PT interface {
	*T
	mgmt.Args
}](target func(PT) ref.CanisterID) resolver {
	return func(c call) (ref.PrincipalID, error) {
		args, err := decode[T, PT](c)
		if err != nil {
			return ref.PrincipalID{}, err
		}
		canister := target(PT(args))
		subnet, ok := c.topology.RoutingTable.Route(canister.Principal())
		if !ok {
			return ref.PrincipalID{}, &SubnetNotFoundError{Canister: canister, Method: c.method}
		}
		return subnet.Principal(), nil
	}
}

// viaBitcoin routes by the network that network extracts from the
// decoded record.
func viaBitcoin[T any, PT interface {
	*T
	mgmt.Args
}](network func(PT) mgmt.BitcoinNetwork) resolver {
	return func(c call) (ref.PrincipalID, error) {
		args, err := decode[T, PT](c)
		if err != nil {
			return ref.PrincipalID{}, err
		}
		return RouteBitcoin(network(PT(args)), c.topology, c.ownSubnet), nil
	}
}

func ecdsaPublicKey(c call) (ref.PrincipalID, error) {
	args, err := decode[mgmt.ECDSAPublicKeyArgs](c)
	if err != nil {
		return ref.PrincipalID{}, err
	}
	return RouteKey(args.KeyID, c.topology, nil, false)
}

func signWithECDSA(c call) (ref.PrincipalID, error) {
	args, err := decode[mgmt.SignWithECDSAArgs](c)
	if err != nil {
		return ref.PrincipalID{}, err
	}
	return RouteKey(args.KeyID, c.topology, nil, true)
}

func computeInitialEcdsaDealings(c call) (ref.PrincipalID, error) {
	args, err := decode[mgmt.ComputeInitialEcdsaDealingsArgs](c)
	if err != nil {
		return ref.PrincipalID{}, err
	}
	return RouteKey(args.KeyID, c.topology, &args.SubnetID, false)
}
