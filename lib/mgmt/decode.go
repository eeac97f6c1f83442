// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package mgmt

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/sysroute/sysroute/lib/codec"
)

// ErrMalformedPayload is wrapped by every Decode failure.
var ErrMalformedPayload = errors.New("malformed payload")

// Decode strictly decodes payload into the argument record T and
// validates it. Errors wrap ErrMalformedPayload.
func Decode[T any, PT interface {
	*T
	Args
}](payload []byte) (T, error) {
	var args T
	err := DecodeInto(payload, PT(&args))
	return args, err
}

// DecodeInto strictly decodes payload into args, checks that every
// required key is present, and validates the result. An identifier key
// that is present but names the management canister decodes
// successfully. Errors wrap ErrMalformedPayload.
func DecodeInto(payload []byte, args Args) error {
	name := reflect.TypeOf(args).Elem().Name()
	if err := codec.UnmarshalStrict(payload, args); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrMalformedPayload, name, err)
	}
	if required, ok := args.(requiredKeys); ok {
		var present map[string]cbor.RawMessage
		if err := codec.Unmarshal(payload, &present); err != nil {
			return fmt.Errorf("%w: decoding %s: %w", ErrMalformedPayload, name, err)
		}
		for _, key := range required.requiredKeys() {
			if _, ok := present[key]; !ok {
				return fmt.Errorf("%w: %s: missing %s", ErrMalformedPayload, name, key)
			}
		}
	}
	if err := args.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedPayload, name, err)
	}
	return nil
}

// Encode validates args and encodes them as a management payload.
func Encode(args Args) ([]byte, error) {
	if err := args.Validate(); err != nil {
		return nil, fmt.Errorf("encoding %T: %w", args, err)
	}
	return codec.Marshal(args)
}

// NewArgs returns a pointer to a zero argument record for the methods
// whose payload determines the destination. The boolean is false for
// methods routed without looking at the payload.
func NewArgs(method Method) (Args, bool) {
	switch method {
	case UpdateSettings:
		return &UpdateSettingsArgs{}, true
	case InstallCode:
		return &InstallCodeArgs{}, true
	case SetController:
		return &SetControllerArgs{}, true
	case CanisterStatus, StartCanister, StopCanister, DeleteCanister, UninstallCode, DepositCycles:
		return &CanisterIDRecord{}, true
	case ProvisionalTopUpCanister:
		return &ProvisionalTopUpCanisterArgs{}, true
	case BitcoinGetBalance:
		return &BitcoinGetBalanceArgs{}, true
	case BitcoinGetUtxos:
		return &BitcoinGetUtxosArgs{}, true
	case BitcoinSendTransaction:
		return &BitcoinSendTransactionArgs{}, true
	case BitcoinGetCurrentFeePercentiles:
		return &BitcoinGetCurrentFeePercentilesArgs{}, true
	case ECDSAPublicKey:
		return &ECDSAPublicKeyArgs{}, true
	case SignWithECDSA:
		return &SignWithECDSAArgs{}, true
	case ComputeInitialEcdsaDealings:
		return &ComputeInitialEcdsaDealingsArgs{}, true
	default:
		return nil, false
	}
}
