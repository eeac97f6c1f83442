// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the socket scaffolding shared by sysroute
// binaries.
//
// A SocketServer serves a CBOR request-response protocol on a Unix
// socket: each connection carries one request map with an "action"
// field and receives one [Response]. Handlers are plain functions
// registered per action. A handler error that carries a stable code
// (any error in the chain with a Code() string method) is reported in
// the response's code field next to the rendered message, so clients
// can branch on the failure kind without parsing text.
//
// [Client] is the matching caller. Call returns a *[ServiceError]
// when the server answers ok=false, and plain errors for transport
// failures.
//
// Binaries compose these pieces in their own main() function. The
// package provides building blocks, not a runtime.
package service
