// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides sysroute's standard CBOR encoding configuration.
//
// CBOR is the self-describing binary format used for every payload this
// repository touches:
//
//   - management call arguments: the opaque payload of a management call
//     is a CBOR map decoded per method into a typed argument record
//     (see lib/mgmt);
//   - the service socket protocol (lib/service);
//   - binary topology snapshots (lib/topology).
//
// This package provides the shared encoding and decoding modes so that
// every package encodes identically without duplicating configuration.
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, which is what makes
// topology fingerprints stable.
//
// Two decoding modes exist:
//
//   - [Unmarshal] is lenient: unknown fields are ignored. Used for the
//     internal socket protocol and topology documents.
//   - [UnmarshalStrict] rejects duplicate map keys and indefinite-length
//     items. Used for management call payloads, where two decoders
//     disagreeing about an ambiguous encoding could route the same call
//     to different subnets. Unknown fields are still ignored so that
//     newer callers can add optional arguments.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// # Struct Tag Rules
//
// Types that are only ever CBOR use `cbor` tags. Types that are also
// rendered as JSON (CLI --json output) use `json` tags only; fxamacker
// reads `json` tags as a fallback when `cbor` tags are absent. Never use
// both on the same field.
//
// Identifier types (lib/ref) implement encoding.TextMarshaler and are
// carried as CBOR text strings in their canonical textual form.
package codec
