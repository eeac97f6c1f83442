// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"errors"
	"fmt"

	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
)

// Sentinels matched by the typed errors through errors.Is.
var (
	ErrDecode          = errors.New("malformed management payload")
	ErrMethodNotFound  = errors.New("management method not found")
	ErrSubnetNotFound  = errors.New("subnet not found")
	ErrAlreadyResolved = errors.New("destination already resolved")
	ErrEcdsaKey        = errors.New("ecdsa key routing failed")
)

// Error codes reported by Code. Stable: they cross process boundaries.
const (
	CodeDecode          = "decode"
	CodeMethodNotFound  = "method_not_found"
	CodeSubnetNotFound  = "subnet_not_found"
	CodeAlreadyResolved = "already_resolved"
	CodeEcdsaKey        = "ecdsa_key"
)

// Code returns the code of the first routing error in err's chain, or
// "" if err is not a routing error.
func Code(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// DecodeError reports that the payload does not decode as the argument
// record of the classified method. The request is malformed; routing
// was never attempted.
type DecodeError struct {
	Method mgmt.Method
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s payload: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
func (e *DecodeError) Code() string         { return CodeDecode }

// MethodNotFoundError reports a method name that is not a management
// method. Method is the name exactly as received.
type MethodNotFoundError struct {
	Method string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("management method %q not found", e.Method)
}

func (e *MethodNotFoundError) Is(target error) bool { return target == ErrMethodNotFound }
func (e *MethodNotFoundError) Code() string         { return CodeMethodNotFound }

// SubnetNotFoundError reports a target canister outside every routing
// table range. Usually the topology is behind or the canister id is
// bogus.
type SubnetNotFoundError struct {
	Canister ref.CanisterID
	Method   mgmt.Method
}

func (e *SubnetNotFoundError) Error() string {
	return fmt.Sprintf("no subnet owns canister %s (method %s)", e.Canister, e.Method)
}

func (e *SubnetNotFoundError) Is(target error) bool { return target == ErrSubnetNotFound }
func (e *SubnetNotFoundError) Code() string         { return CodeSubnetNotFound }

// AlreadyResolvedError reports a call whose receiver is already a
// concrete principal rather than the management canister. Destination
// is that receiver; no routing applies.
type AlreadyResolvedError struct {
	Destination ref.PrincipalID
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("destination %s is already resolved", e.Destination)
}

func (e *AlreadyResolvedError) Is(target error) bool { return target == ErrAlreadyResolved }
func (e *AlreadyResolvedError) Code() string         { return CodeAlreadyResolved }

// EcdsaKeyErrorKind distinguishes the ways key routing fails.
type EcdsaKeyErrorKind uint8

const (
	// EcdsaUnknownSubnet: the explicitly requested subnet is not in
	// the topology.
	EcdsaUnknownSubnet EcdsaKeyErrorKind = iota + 1

	// EcdsaKeyNotHeld: the explicitly requested subnet does not hold
	// the key. Keys lists what it does hold.
	EcdsaKeyNotHeld

	// EcdsaNoSigningSubnet: no subnet signs with the key and signing
	// was required. Keys lists every key in the signing index.
	EcdsaNoSigningSubnet

	// EcdsaKeyNotFound: no subnet holds the key. Keys is the union of
	// the keys held anywhere.
	EcdsaKeyNotFound
)

func (k EcdsaKeyErrorKind) String() string {
	switch k {
	case EcdsaUnknownSubnet:
		return "unknown_subnet"
	case EcdsaKeyNotHeld:
		return "key_not_held"
	case EcdsaNoSigningSubnet:
		return "no_signing_subnet"
	case EcdsaKeyNotFound:
		return "key_not_found"
	default:
		return fmt.Sprintf("EcdsaKeyErrorKind(%d)", uint8(k))
	}
}

// EcdsaKeyError reports that no subnet satisfies a key request. Subnet
// is set for EcdsaUnknownSubnet and EcdsaKeyNotHeld. Keys is sorted.
type EcdsaKeyError struct {
	Kind   EcdsaKeyErrorKind
	Key    mgmt.EcdsaKeyID
	Subnet ref.SubnetID
	Keys   []mgmt.EcdsaKeyID
}

func (e *EcdsaKeyError) Error() string {
	switch e.Kind {
	case EcdsaUnknownSubnet:
		return fmt.Sprintf("Requested ECDSA key %s from unknown subnet %s", e.Key, e.Subnet)
	case EcdsaKeyNotHeld:
		return fmt.Sprintf("Requested ECDSA key %s on subnet %s, subnet has keys: %s",
			e.Key, e.Subnet, mgmt.FormatEcdsaKeyIDs(e.Keys))
	case EcdsaNoSigningSubnet:
		return fmt.Sprintf("Requested ECDSA key: %s, existing keys with signing enabled: %s",
			e.Key, mgmt.FormatEcdsaKeyIDs(e.Keys))
	default:
		return fmt.Sprintf("Requested ECDSA key: %s, existing keys: %s",
			e.Key, mgmt.FormatEcdsaKeyIDs(e.Keys))
	}
}

func (e *EcdsaKeyError) Is(target error) bool { return target == ErrEcdsaKey }
func (e *EcdsaKeyError) Code() string         { return CodeEcdsaKey }
