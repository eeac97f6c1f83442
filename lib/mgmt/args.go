// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package mgmt

import (
	"errors"
	"fmt"

	"github.com/sysroute/sysroute/lib/ref"
)

// Args is implemented by every argument record. Validate reports
// malformed field values after decoding.
type Args interface {
	Validate() error
}

// requiredKeys is implemented by records with identifier fields whose
// zero value is itself a valid identifier (the management canister).
// Decoding fails when the payload leaves one of these keys out.
type requiredKeys interface {
	requiredKeys() []string
}

// canisterKey is required by every canister-targeted record.
var canisterKey = []string{"canister_id"}

// CanisterSettings are the optional settings of a canister.
type CanisterSettings struct {
	Controllers       []ref.PrincipalID `cbor:"controllers,omitempty"`
	ComputeAllocation *uint64           `cbor:"compute_allocation,omitempty"`
	MemoryAllocation  *uint64           `cbor:"memory_allocation,omitempty"`
	FreezingThreshold *uint64           `cbor:"freezing_threshold,omitempty"`
}

// UpdateSettingsArgs are the arguments of update_settings.
type UpdateSettingsArgs struct {
	CanisterID ref.CanisterID   `cbor:"canister_id"`
	Settings   CanisterSettings `cbor:"settings"`
}

func (a *UpdateSettingsArgs) Validate() error { return nil }

func (a *UpdateSettingsArgs) requiredKeys() []string { return canisterKey }

// InstallMode selects how install_code treats existing canister state.
type InstallMode string

const (
	InstallModeInstall   InstallMode = "install"
	InstallModeReinstall InstallMode = "reinstall"
	InstallModeUpgrade   InstallMode = "upgrade"
)

// InstallCodeArgs are the arguments of install_code.
type InstallCodeArgs struct {
	Mode              InstallMode    `cbor:"mode"`
	CanisterID        ref.CanisterID `cbor:"canister_id"`
	WasmModule        []byte         `cbor:"wasm_module"`
	Arg               []byte         `cbor:"arg,omitempty"`
	ComputeAllocation *uint64        `cbor:"compute_allocation,omitempty"`
	MemoryAllocation  *uint64        `cbor:"memory_allocation,omitempty"`
}

func (a *InstallCodeArgs) Validate() error {
	switch a.Mode {
	case InstallModeInstall, InstallModeReinstall, InstallModeUpgrade:
	default:
		return fmt.Errorf("invalid install mode %q", a.Mode)
	}
	return nil
}

func (a *InstallCodeArgs) requiredKeys() []string { return canisterKey }

// SetControllerArgs are the arguments of set_controller.
type SetControllerArgs struct {
	CanisterID    ref.CanisterID  `cbor:"canister_id"`
	NewController ref.PrincipalID `cbor:"new_controller"`
}

func (a *SetControllerArgs) Validate() error { return nil }

func (a *SetControllerArgs) requiredKeys() []string { return canisterKey }

// CanisterIDRecord is the argument of the methods that only name a
// canister: canister_status, start_canister, stop_canister,
// delete_canister, uninstall_code and deposit_cycles.
type CanisterIDRecord struct {
	CanisterID ref.CanisterID `cbor:"canister_id"`
}

func (a *CanisterIDRecord) Validate() error { return nil }

func (a *CanisterIDRecord) requiredKeys() []string { return canisterKey }

// ProvisionalTopUpCanisterArgs are the arguments of
// provisional_top_up_canister.
type ProvisionalTopUpCanisterArgs struct {
	CanisterID ref.CanisterID `cbor:"canister_id"`
	Amount     uint64         `cbor:"amount"`
}

func (a *ProvisionalTopUpCanisterArgs) Validate() error { return nil }

func (a *ProvisionalTopUpCanisterArgs) requiredKeys() []string { return canisterKey }

// UtxosFilter narrows a bitcoin_get_utxos query. At most one field is
// set.
type UtxosFilter struct {
	MinConfirmations *uint32 `cbor:"min_confirmations,omitempty"`
	Page             []byte  `cbor:"page,omitempty"`
}

// BitcoinGetBalanceArgs are the arguments of bitcoin_get_balance.
type BitcoinGetBalanceArgs struct {
	Address          string         `cbor:"address"`
	Network          BitcoinNetwork `cbor:"network"`
	MinConfirmations *uint32        `cbor:"min_confirmations,omitempty"`
}

func (a *BitcoinGetBalanceArgs) Validate() error {
	if a.Address == "" {
		return errors.New("missing address")
	}
	return validateNetwork(a.Network)
}

// BitcoinGetUtxosArgs are the arguments of bitcoin_get_utxos.
type BitcoinGetUtxosArgs struct {
	Address string         `cbor:"address"`
	Network BitcoinNetwork `cbor:"network"`
	Filter  *UtxosFilter   `cbor:"filter,omitempty"`
}

func (a *BitcoinGetUtxosArgs) Validate() error {
	if a.Address == "" {
		return errors.New("missing address")
	}
	if a.Filter != nil && a.Filter.MinConfirmations != nil && a.Filter.Page != nil {
		return errors.New("filter sets both min_confirmations and page")
	}
	return validateNetwork(a.Network)
}

// BitcoinSendTransactionArgs are the arguments of
// bitcoin_send_transaction.
type BitcoinSendTransactionArgs struct {
	Transaction []byte         `cbor:"transaction"`
	Network     BitcoinNetwork `cbor:"network"`
}

func (a *BitcoinSendTransactionArgs) Validate() error {
	if len(a.Transaction) == 0 {
		return errors.New("missing transaction")
	}
	return validateNetwork(a.Network)
}

// BitcoinGetCurrentFeePercentilesArgs are the arguments of
// bitcoin_get_current_fee_percentiles.
type BitcoinGetCurrentFeePercentilesArgs struct {
	Network BitcoinNetwork `cbor:"network"`
}

func (a *BitcoinGetCurrentFeePercentilesArgs) Validate() error {
	return validateNetwork(a.Network)
}

func validateNetwork(network BitcoinNetwork) error {
	if !network.Valid() {
		return errors.New("missing network")
	}
	return nil
}

// ECDSAPublicKeyArgs are the arguments of ecdsa_public_key. A nil
// CanisterID means the caller's own canister.
type ECDSAPublicKeyArgs struct {
	CanisterID     *ref.CanisterID `cbor:"canister_id,omitempty"`
	DerivationPath [][]byte        `cbor:"derivation_path"`
	KeyID          EcdsaKeyID      `cbor:"key_id"`
}

func (a *ECDSAPublicKeyArgs) Validate() error {
	return a.KeyID.Validate()
}

// messageHashLength is the size of the hash signed by sign_with_ecdsa.
const messageHashLength = 32

// SignWithECDSAArgs are the arguments of sign_with_ecdsa.
type SignWithECDSAArgs struct {
	MessageHash    []byte     `cbor:"message_hash"`
	DerivationPath [][]byte   `cbor:"derivation_path"`
	KeyID          EcdsaKeyID `cbor:"key_id"`
}

func (a *SignWithECDSAArgs) Validate() error {
	if len(a.MessageHash) != messageHashLength {
		return fmt.Errorf("message_hash is %d bytes, want %d", len(a.MessageHash), messageHashLength)
	}
	return a.KeyID.Validate()
}

// ComputeInitialEcdsaDealingsArgs are the arguments of
// compute_initial_ecdsa_dealings. SubnetID names the subnet that must
// hold the key and produce the dealings.
type ComputeInitialEcdsaDealingsArgs struct {
	KeyID           EcdsaKeyID   `cbor:"key_id"`
	SubnetID        ref.SubnetID `cbor:"subnet_id"`
	Nodes           []ref.NodeID `cbor:"nodes"`
	RegistryVersion uint64       `cbor:"registry_version"`
}

func (a *ComputeInitialEcdsaDealingsArgs) Validate() error {
	return a.KeyID.Validate()
}

func (a *ComputeInitialEcdsaDealingsArgs) requiredKeys() []string {
	return []string{"subnet_id"}
}
