// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysroute/sysroute/lib/clock"
	"github.com/sysroute/sysroute/lib/codec"
	"github.com/sysroute/sysroute/lib/history"
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/routing"
	"github.com/sysroute/sysroute/lib/schema/resolver"
	"github.com/sysroute/sysroute/lib/service"
	"github.com/sysroute/sysroute/lib/topology"
	"github.com/sysroute/sysroute/lib/version"
)

// ResolverService answers socket actions against the snapshot
// currently published in store. History is nil when the snapshot
// history is disabled.
type ResolverService struct {
	store     *topology.Store
	history   *history.Store
	ownSubnet ref.SubnetID
	clock     clock.Clock
	startedAt time.Time
	logger    *slog.Logger
}

// requestError reports a malformed socket request.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
func (e *requestError) Code() string  { return service.CodeInvalidRequest }

// errNoTopology is returned before any snapshot has been published.
var errNoTopology = errors.New("no topology snapshot loaded")

// errHistoryDisabled is returned by the history action when no history
// database is configured.
var errHistoryDisabled = errors.New("snapshot history is disabled (set history.path)")

func (s *ResolverService) registerActions(server *service.SocketServer) {
	server.Handle(resolver.ActionResolve, s.handleResolve)
	server.Handle(resolver.ActionStatus, s.handleStatus)
	server.Handle(resolver.ActionMethods, s.handleMethods)
	server.Handle(resolver.ActionHistory, s.handleHistory)
}

func (s *ResolverService) handleResolve(_ context.Context, raw []byte) (any, error) {
	var request resolver.ResolveRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, &requestError{fmt.Errorf("invalid resolve request: %w", err)}
	}

	// One snapshot for the whole resolution.
	snapshot := s.store.Load()
	if snapshot == nil {
		return nil, errNoTopology
	}

	ownSubnet := s.ownSubnet
	if request.OwnSubnet != nil {
		ownSubnet = *request.OwnSubnet
	}
	receiver := ref.ManagementCanisterID
	if request.Receiver != nil {
		receiver = *request.Receiver
	}

	destination, err := routing.ResolveCall(snapshot.Topology, receiver, request.Method, request.Payload, ownSubnet)
	if err != nil {
		s.logger.Debug("resolution failed",
			"method", request.Method,
			"code", routing.Code(err),
			"error", err,
		)
		return nil, err
	}

	response := resolver.ResolveResponse{
		Destination:         destination,
		TopologyFingerprint: snapshot.Fingerprint,
	}
	if method, ok := mgmt.ParseMethod(request.Method); ok {
		if class, ok := routing.ClassOf(method); ok {
			response.Class = class.String()
		}
	}
	return response, nil
}

func (s *ResolverService) handleStatus(_ context.Context, _ []byte) (any, error) {
	snapshot := s.store.Load()
	if snapshot == nil {
		return nil, errNoTopology
	}
	network := snapshot.Topology

	response := resolver.StatusResponse{
		Version:       version.Info(),
		OwnSubnet:     s.ownSubnet,
		Fingerprint:   snapshot.Fingerprint,
		Source:        snapshot.Source,
		Subnets:       len(network.Subnets),
		Ranges:        network.RoutingTable.Len(),
		SigningKeys:   len(network.SigningKeys()),
		LoadedAt:      snapshot.LoadedAt.Unix(),
		UptimeSeconds: int64(s.clock.Now().Sub(s.startedAt) / time.Second),
	}
	for _, issue := range network.Check() {
		response.Issues = append(response.Issues, issue.String())
	}
	return response, nil
}

func (s *ResolverService) handleMethods(_ context.Context, _ []byte) (any, error) {
	routes := routing.Routes()
	methods := make([]resolver.MethodInfo, len(routes))
	for i, route := range routes {
		methods[i] = resolver.MethodInfo{
			Name:  route.Method.String(),
			Class: route.Class.String(),
		}
	}
	return methods, nil
}

func (s *ResolverService) handleHistory(ctx context.Context, raw []byte) (any, error) {
	if s.history == nil {
		return nil, errHistoryDisabled
	}
	var request resolver.HistoryRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, &requestError{fmt.Errorf("invalid history request: %w", err)}
	}
	if request.Limit < 0 {
		return nil, &requestError{fmt.Errorf("invalid history request: negative limit %d", request.Limit)}
	}

	entries, err := s.history.Recent(ctx, request.Limit)
	if err != nil {
		return nil, err
	}
	response := make([]resolver.HistoryEntry, len(entries))
	for i, entry := range entries {
		response[i] = resolver.HistoryEntry{
			Fingerprint: entry.Fingerprint,
			Source:      entry.Source,
			LoadedAt:    entry.LoadedAt.Unix(),
			Subnets:     entry.Subnets,
			Ranges:      entry.Ranges,
			SigningKeys: entry.SigningKeys,
			Issues:      entry.Issues,
		}
	}
	return response, nil
}

// recordSnapshot appends a newly published snapshot to the history.
// A failed write is logged; resolution never depends on the history.
func (s *ResolverService) recordSnapshot(ctx context.Context, snapshot *topology.Snapshot) {
	if s.history == nil || snapshot == nil {
		return
	}
	if err := s.history.Record(ctx, snapshot); err != nil {
		s.logger.Error("recording topology snapshot failed",
			"fingerprint", snapshot.Fingerprint.Short(),
			"error", err,
		)
	}
}
