// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve implements the call-level sysroute commands:
//
//   - resolve: resolve a call locally against a topology file
//   - call: resolve a call through a running sysroute-service
//   - status: show the service's topology snapshot
//   - encode: turn a YAML argument file into a CBOR payload
//   - methods: list management methods with their routing classes
//
// Payloads come from --payload-hex, --payload-file, or --args. An
// argument file is YAML shaped like the method's argument record;
// strings prefixed with "0x" are hex byte strings:
//
//	key_id: {curve: secp256k1, name: some_key}
//	message_hash: 0x0101010101010101010101010101010101010101010101010101010101010101
//	derivation_path: [0x00]
package resolve
