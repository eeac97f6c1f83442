// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package routing resolves the destination of management calls.
//
// A management call is addressed to the management canister and names
// a method; the subnet that must execute it depends on the method and,
// for most methods, on the call's payload. [Resolve] classifies the
// method name, decodes the payload where the method needs it, and
// computes the destination against a topology snapshot:
//
//   - Own-subnet methods (create_canister, raw_rand, http_request, ...)
//     execute on the caller's own subnet.
//   - Canister-targeted methods (install_code, stop_canister, ...)
//     execute on the subnet that owns the target canister in the
//     routing table.
//   - Bitcoin methods go to a bridge canister or a Bitcoin-enabled
//     subnet, see [RouteBitcoin].
//   - Threshold-ECDSA methods go to a subnet holding, and for signing
//     enabled to sign with, the requested key, see [RouteKey].
//
// The method table is closed: every [mgmt.Method] has exactly one
// route, and the package does not compile if a method is added to
// lib/mgmt without a route here.
//
// Resolution is a pure function of its inputs. It does no I/O, never
// mutates the topology, and does not log. Callers pass one snapshot
// per call (see topology.Store) and may resolve concurrently.
//
// Failures are returned as typed errors carrying structured data:
// [DecodeError] (the request is malformed), [MethodNotFoundError],
// [SubnetNotFoundError], [AlreadyResolvedError] and [EcdsaKeyError].
// Each matches a sentinel with errors.Is and reports a stable code via
// [Code]. EcdsaKeyError renders the exact diagnostic texts operators
// rely on, listing the keys actually present so "key absent from the
// network" and "key present elsewhere" read differently.
//
// Two behaviors are intentional and easy to misread:
//
//   - An explicitly requested subnet (compute_initial_ecdsa_dealings)
//     is accepted on custody alone; whether it is enabled to sign is
//     never checked. Without an explicit subnet, signing requests
//     require a designated signer.
//   - setup_initial_dkg routes to the caller's own subnet. Only the
//     governance subnet is allowed to make that call; that check
//     belongs to the caller of this package and is not repeated here.
package routing
