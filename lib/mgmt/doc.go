// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package mgmt describes the management interface: the closed set of
// system methods addressed to the management canister, the argument
// record each method takes, and the value types those records carry
// (threshold key ids, Bitcoin networks).
//
// A management call payload is an opaque CBOR blob. [Decode] turns it
// into the argument record for a method and validates required fields,
// so a record returned without error always has the fields routing
// depends on:
//
//	args, err := mgmt.Decode[mgmt.SignWithECDSAArgs](payload)
//	if err != nil {
//	    return err // errors.Is(err, mgmt.ErrMalformedPayload)
//	}
//	route(args.KeyID)
//
// [Encode] is the inverse, used by tests and by the CLI to build
// payloads from YAML argument files.
//
// Decoding is strict (see lib/codec): duplicate map keys and
// indefinite-length items are rejected. Unknown fields are ignored so
// callers may send newer optional arguments.
package mgmt
