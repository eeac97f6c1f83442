// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package mgmt

import "fmt"

// Method is a management method. The set is closed: adding a method
// means adding a constant here, a name in methodNames, and a route in
// lib/routing (which fails to compile until it has one).
type Method uint8

const (
	CreateCanister Method = iota
	UpdateSettings
	InstallCode
	CanisterStatus
	StartCanister
	StopCanister
	DeleteCanister
	UninstallCode
	DepositCycles
	RawRand
	SetController
	HTTPRequest
	SetupInitialDKG
	ECDSAPublicKey
	SignWithECDSA
	ComputeInitialEcdsaDealings
	BitcoinGetBalance
	BitcoinGetUtxos
	BitcoinSendTransaction
	BitcoinGetCurrentFeePercentiles
	BitcoinSendTransactionInternal
	BitcoinGetSuccessors
	ProvisionalCreateCanisterWithCycles
	ProvisionalTopUpCanister

	// MethodCount is the number of methods. Not a method.
	MethodCount
)

// methodNames holds the wire name of each method, indexed by Method.
var methodNames = [MethodCount]string{
	CreateCanister:                      "create_canister",
	UpdateSettings:                      "update_settings",
	InstallCode:                         "install_code",
	CanisterStatus:                      "canister_status",
	StartCanister:                       "start_canister",
	StopCanister:                        "stop_canister",
	DeleteCanister:                      "delete_canister",
	UninstallCode:                       "uninstall_code",
	DepositCycles:                       "deposit_cycles",
	RawRand:                             "raw_rand",
	SetController:                       "set_controller",
	HTTPRequest:                         "http_request",
	SetupInitialDKG:                     "setup_initial_dkg",
	ECDSAPublicKey:                      "ecdsa_public_key",
	SignWithECDSA:                       "sign_with_ecdsa",
	ComputeInitialEcdsaDealings:         "compute_initial_ecdsa_dealings",
	BitcoinGetBalance:                   "bitcoin_get_balance",
	BitcoinGetUtxos:                     "bitcoin_get_utxos",
	BitcoinSendTransaction:              "bitcoin_send_transaction",
	BitcoinGetCurrentFeePercentiles:     "bitcoin_get_current_fee_percentiles",
	BitcoinSendTransactionInternal:      "bitcoin_send_transaction_internal",
	BitcoinGetSuccessors:                "bitcoin_get_successors",
	ProvisionalCreateCanisterWithCycles: "provisional_create_canister_with_cycles",
	ProvisionalTopUpCanister:            "provisional_top_up_canister",
}

var methodsByName = func() map[string]Method {
	index := make(map[string]Method, MethodCount)
	for method, name := range methodNames {
		if name == "" {
			panic(fmt.Sprintf("mgmt: method %d has no name", method))
		}
		index[name] = Method(method)
	}
	return index
}()

// ParseMethod returns the method with the given wire name. Names are
// case-sensitive. The boolean is false for unknown names.
func ParseMethod(name string) (Method, bool) {
	method, ok := methodsByName[name]
	return method, ok
}

// Methods returns every method in declaration order.
func Methods() []Method {
	methods := make([]Method, MethodCount)
	for i := range methods {
		methods[i] = Method(i)
	}
	return methods
}

// Valid reports whether m is a declared method.
func (m Method) Valid() bool { return m < MethodCount }

// String returns the wire name.
func (m Method) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
	return methodNames[m]
}
