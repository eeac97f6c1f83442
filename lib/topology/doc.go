// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package topology holds the network topology snapshot that management
// calls are routed against.
//
// A [NetworkTopology] is a point-in-time view of the network: the
// [RoutingTable] assigning canister id ranges to subnets, the per-subnet
// [SubnetTopology] (held threshold-ECDSA keys, Bitcoin feature state),
// the ordered ECDSA signing index, and the optional well-known Bitcoin
// bridge canisters. Routing code treats a snapshot as read-only; a
// snapshot is never mutated after it is published through a [Store].
//
// The parts of a snapshot are not required to agree with each other.
// [NetworkTopology.Check] reports the disagreements it finds (signers
// the subnet map does not know, signers that do not hold their key,
// routing table owners with no subnet entry) so operators can see stale
// or partially synchronized topology without the router refusing to
// work.
//
// Snapshots are persisted as a [Document] in one of several formats
// selected by file extension: YAML, JSON with comments, CBOR, and CBOR
// compressed with zstd or LZ4. [Fingerprint] identifies a snapshot's
// content independently of the file format it was read from. A
// [Watcher] reloads a topology file on an interval and publishes new
// snapshots to a Store, keeping the previous snapshot when a reload
// fails.
package topology
