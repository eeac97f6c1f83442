// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/sysroute/sysroute/lib/clock"
	"github.com/sysroute/sysroute/lib/history"
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/ref/reftest"
	"github.com/sysroute/sysroute/lib/routing"
	"github.com/sysroute/sysroute/lib/schema/resolver"
	"github.com/sysroute/sysroute/lib/service"
	"github.com/sysroute/sysroute/lib/testutil"
	"github.com/sysroute/sysroute/lib/topology"
)

var (
	someKey  = mgmt.MustParseEcdsaKeyID("secp256k1:some_key")
	otherKey = mgmt.MustParseEcdsaKeyID("secp256k1:other_key")
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testNetwork assigns canister ids [0x000, 0x0FF] to subnet 0, lets
// subnet 0 sign with some_key, and gives subnet 1 a held but unsigned
// other_key.
func testNetwork(t *testing.T) *topology.NetworkTopology {
	t.Helper()
	network := topology.New()
	network.Subnets[reftest.SubnetID(0)] = &topology.SubnetTopology{
		EcdsaKeysHeld: map[mgmt.EcdsaKeyID]struct{}{someKey: {}},
	}
	network.Subnets[reftest.SubnetID(1)] = &topology.SubnetTopology{
		EcdsaKeysHeld: map[mgmt.EcdsaKeyID]struct{}{otherKey: {}},
	}
	network.EcdsaSigningSubnets[someKey] = []ref.SubnetID{reftest.SubnetID(0)}
	err := network.RoutingTable.Insert(topology.CanisterIDRange{
		Start: ref.CanisterIDFromU64(0),
		End:   ref.CanisterIDFromU64(0xFF),
	}, reftest.SubnetID(0))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return network
}

type harness struct {
	resolverService *ResolverService
	client          *service.Client
	store           *topology.Store
	clock           *clock.FakeClock
	own             ref.SubnetID
}

// startResolver serves a ResolverService over a temporary socket with
// network published as the current snapshot. A nil network leaves the
// store empty.
func startResolver(t *testing.T, network *topology.NetworkTopology) *harness {
	t.Helper()
	return startResolverWithHistory(t, network, nil)
}

// startResolverWithHistory is startResolver with a snapshot history
// attached. The initial snapshot is recorded as the service does at
// startup.
func startResolverWithHistory(t *testing.T, network *topology.NetworkTopology, snapshots *history.Store) *harness {
	t.Helper()

	fake := clock.Fake(epoch)
	store := topology.NewStore(nil)
	if network != nil {
		snapshot, err := topology.NewSnapshot(network, "test", fake.Now())
		if err != nil {
			t.Fatalf("NewSnapshot: %v", err)
		}
		store.Swap(snapshot)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	own := reftest.SubnetID(9)
	resolverService := &ResolverService{
		store:     store,
		history:   snapshots,
		ownSubnet: own,
		clock:     fake,
		startedAt: fake.Now(),
		logger:    logger,
	}
	resolverService.recordSnapshot(context.Background(), store.Load())

	socketPath := testutil.SocketDir(t) + "/resolver.sock"
	server := service.NewSocketServer(socketPath, logger)
	resolverService.registerActions(server)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "socket server never became ready")

	return &harness{
		resolverService: resolverService,
		client:          service.NewClient(socketPath),
		store:           store,
		clock:           fake,
		own:             own,
	}
}

func (h *harness) resolve(t *testing.T, request resolver.ResolveRequest) (resolver.ResolveResponse, error) {
	t.Helper()
	var response resolver.ResolveResponse
	err := h.client.Call(context.Background(), resolver.ActionResolve, request.Fields(), &response)
	return response, err
}

func encode(t *testing.T, args mgmt.Args) []byte {
	t.Helper()
	payload, err := mgmt.Encode(args)
	if err != nil {
		t.Fatalf("Encode(%T): %v", args, err)
	}
	return payload
}

func signPayload(t *testing.T, key mgmt.EcdsaKeyID) []byte {
	return encode(t, &mgmt.SignWithECDSAArgs{
		MessageHash: bytes.Repeat([]byte{7}, 32),
		KeyID:       key,
	})
}

// serviceError asserts err is a service error carrying code.
func serviceError(t *testing.T, err error, code string) *service.ServiceError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got success", code)
	}
	var serviceErr *service.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error is %T, want *service.ServiceError: %v", err, err)
	}
	if serviceErr.Reason != code {
		t.Errorf("code = %q, want %q (message %q)", serviceErr.Reason, code, serviceErr.Message)
	}
	// The code survives the socket for callers matching on it.
	if got := routing.Code(err); got != code {
		t.Errorf("routing.Code(err) = %q, want %q", got, code)
	}
	return serviceErr
}

func TestResolveDestinations(t *testing.T) {
	h := startResolver(t, testNetwork(t))
	canister := ref.CanisterIDFromU64(0x42)

	tests := []struct {
		name      string
		request   resolver.ResolveRequest
		want      ref.PrincipalID
		wantClass string
	}{
		{
			name:      "own-subnet",
			request:   resolver.ResolveRequest{Method: mgmt.RawRand.String()},
			want:      h.own.Principal(),
			wantClass: routing.ClassOwnSubnet.String(),
		},
		{
			name: "own-subnet-override",
			request: resolver.ResolveRequest{
				Method:    mgmt.CreateCanister.String(),
				OwnSubnet: func() *ref.SubnetID { s := reftest.SubnetID(3); return &s }(),
			},
			want:      reftest.SubnetID(3).Principal(),
			wantClass: routing.ClassOwnSubnet.String(),
		},
		{
			name: "canister",
			request: resolver.ResolveRequest{
				Method:  mgmt.StopCanister.String(),
				Payload: encode(t, &mgmt.CanisterIDRecord{CanisterID: canister}),
			},
			want:      reftest.SubnetID(0).Principal(),
			wantClass: routing.ClassCanister.String(),
		},
		{
			name: "sign",
			request: resolver.ResolveRequest{
				Method:  mgmt.SignWithECDSA.String(),
				Payload: signPayload(t, someKey),
			},
			want:      reftest.SubnetID(0).Principal(),
			wantClass: routing.ClassEcdsa.String(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := h.resolve(t, tt.request)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if response.Destination != tt.want {
				t.Errorf("destination = %s, want %s", response.Destination, tt.want)
			}
			if response.Class != tt.wantClass {
				t.Errorf("class = %q, want %q", response.Class, tt.wantClass)
			}
			if response.TopologyFingerprint != h.store.Load().Fingerprint {
				t.Errorf("fingerprint = %s, want current snapshot's", response.TopologyFingerprint.Short())
			}
		})
	}
}

func TestResolveErrorCodes(t *testing.T) {
	h := startResolver(t, testNetwork(t))
	elsewhere := reftest.CanisterID(1).Principal()

	tests := []struct {
		name    string
		request resolver.ResolveRequest
		code    string
	}{
		{
			name:    "unknown-method",
			request: resolver.ResolveRequest{Method: "fetch_canister_logs"},
			code:    routing.CodeMethodNotFound,
		},
		{
			name:    "garbage-payload",
			request: resolver.ResolveRequest{Method: mgmt.StartCanister.String(), Payload: []byte{0xFF}},
			code:    routing.CodeDecode,
		},
		{
			name: "unrouted-canister",
			request: resolver.ResolveRequest{
				Method:  mgmt.StartCanister.String(),
				Payload: encode(t, &mgmt.CanisterIDRecord{CanisterID: ref.CanisterIDFromU64(0x5000)}),
			},
			code: routing.CodeSubnetNotFound,
		},
		{
			name: "unsigned-key",
			request: resolver.ResolveRequest{
				Method:  mgmt.SignWithECDSA.String(),
				Payload: signPayload(t, otherKey),
			},
			code: routing.CodeEcdsaKey,
		},
		{
			name:    "already-resolved",
			request: resolver.ResolveRequest{Method: mgmt.RawRand.String(), Receiver: &elsewhere},
			code:    routing.CodeAlreadyResolved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.resolve(t, tt.request)
			serviceError(t, err, tt.code)
		})
	}
}

func TestResolveEcdsaErrorMessage(t *testing.T) {
	h := startResolver(t, testNetwork(t))

	_, err := h.resolve(t, resolver.ResolveRequest{
		Method:  mgmt.SignWithECDSA.String(),
		Payload: signPayload(t, otherKey),
	})
	serviceErr := serviceError(t, err, routing.CodeEcdsaKey)

	want := "Requested ECDSA key: Secp256k1:other_key, existing keys with signing enabled: [Secp256k1:some_key]"
	if serviceErr.Message != want {
		t.Errorf("message = %q, want %q", serviceErr.Message, want)
	}
}

func TestResolveWithoutTopology(t *testing.T) {
	h := startResolver(t, nil)

	_, err := h.resolve(t, resolver.ResolveRequest{Method: mgmt.RawRand.String()})
	serviceErr := serviceError(t, err, "")
	if serviceErr.Message != errNoTopology.Error() {
		t.Errorf("message = %q, want %q", serviceErr.Message, errNoTopology.Error())
	}

	var status resolver.StatusResponse
	if err := h.client.Call(context.Background(), resolver.ActionStatus, nil, &status); err == nil {
		t.Error("status succeeded without a topology")
	}
}

func TestResolveRejectsMalformedRequest(t *testing.T) {
	h := startResolver(t, testNetwork(t))

	fields := map[string]any{"method": mgmt.RawRand.String(), "receiver": "not-a-principal"}
	err := h.client.Call(context.Background(), resolver.ActionResolve, fields, nil)
	serviceError(t, err, service.CodeInvalidRequest)
}

func TestResolveSeesSwappedSnapshot(t *testing.T) {
	h := startResolver(t, testNetwork(t))
	request := resolver.ResolveRequest{
		Method:  mgmt.StopCanister.String(),
		Payload: encode(t, &mgmt.CanisterIDRecord{CanisterID: ref.CanisterIDFromU64(0x42)}),
	}

	before, err := h.resolve(t, request)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Move the range to subnet 1.
	moved := testNetwork(t)
	moved.RoutingTable = topology.RoutingTable{}
	err = moved.RoutingTable.Insert(topology.CanisterIDRange{
		Start: ref.CanisterIDFromU64(0),
		End:   ref.CanisterIDFromU64(0xFF),
	}, reftest.SubnetID(1))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	snapshot, err := topology.NewSnapshot(moved, "moved", h.clock.Now())
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	h.store.Swap(snapshot)

	after, err := h.resolve(t, request)
	if err != nil {
		t.Fatalf("resolve after swap: %v", err)
	}
	if after.Destination != reftest.SubnetID(1).Principal() {
		t.Errorf("destination after swap = %s, want subnet 1", after.Destination)
	}
	if after.TopologyFingerprint == before.TopologyFingerprint {
		t.Error("fingerprint unchanged after swapping in a different topology")
	}
	if after.TopologyFingerprint != snapshot.Fingerprint {
		t.Errorf("fingerprint = %s, want %s", after.TopologyFingerprint.Short(), snapshot.Fingerprint.Short())
	}
}

func TestStatus(t *testing.T) {
	network := testNetwork(t)
	h := startResolver(t, network)
	h.clock.Advance(90 * time.Second)

	var status resolver.StatusResponse
	if err := h.client.Call(context.Background(), resolver.ActionStatus, nil, &status); err != nil {
		t.Fatalf("status: %v", err)
	}

	if status.OwnSubnet != h.own {
		t.Errorf("own_subnet = %s, want %s", status.OwnSubnet, h.own)
	}
	if status.Subnets != 2 || status.Ranges != 1 || status.SigningKeys != 1 {
		t.Errorf("counts = %d subnets, %d ranges, %d signing keys; want 2, 1, 1",
			status.Subnets, status.Ranges, status.SigningKeys)
	}
	if status.Fingerprint != h.store.Load().Fingerprint {
		t.Errorf("fingerprint = %s, want current snapshot's", status.Fingerprint.Short())
	}
	if status.Source != "test" {
		t.Errorf("source = %q, want test", status.Source)
	}
	if status.LoadedAt != epoch.Unix() {
		t.Errorf("loaded_at = %d, want %d", status.LoadedAt, epoch.Unix())
	}
	if status.UptimeSeconds != 90 {
		t.Errorf("uptime_seconds = %d, want 90", status.UptimeSeconds)
	}
	if len(status.Issues) != len(network.Check()) {
		t.Errorf("issues = %v, want %d entries", status.Issues, len(network.Check()))
	}
}

func TestMethods(t *testing.T) {
	h := startResolver(t, nil)

	var methods []resolver.MethodInfo
	if err := h.client.Call(context.Background(), resolver.ActionMethods, nil, &methods); err != nil {
		t.Fatalf("methods: %v", err)
	}
	if len(methods) != int(mgmt.MethodCount) {
		t.Fatalf("got %d methods, want %d", len(methods), mgmt.MethodCount)
	}
	for i, method := range methods {
		if method.Name != mgmt.Method(i).String() {
			t.Errorf("methods[%d] = %q, want %q", i, method.Name, mgmt.Method(i))
		}
		class, _ := routing.ClassOf(mgmt.Method(i))
		if method.Class != class.String() {
			t.Errorf("%s class = %q, want %q", method.Name, method.Class, class)
		}
	}
}

func TestHistory(t *testing.T) {
	snapshots, err := history.Open(history.Config{Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { snapshots.Close() })

	h := startResolverWithHistory(t, testNetwork(t), snapshots)
	initial := h.store.Load()

	// A reload publishes a different topology.
	h.clock.Advance(time.Minute)
	reloaded := testNetwork(t)
	delete(reloaded.Subnets, reftest.SubnetID(1))
	snapshot, err := topology.NewSnapshot(reloaded, "reloaded", h.clock.Now())
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	h.store.Swap(snapshot)
	h.resolverService.recordSnapshot(context.Background(), snapshot)

	var entries []resolver.HistoryEntry
	if err := h.client.Call(context.Background(), resolver.ActionHistory, nil, &entries); err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d history entries, want 2", len(entries))
	}
	if entries[0].Fingerprint != snapshot.Fingerprint || entries[0].Source != "reloaded" {
		t.Errorf("newest entry = %+v, want the reloaded snapshot", entries[0])
	}
	if entries[0].LoadedAt != epoch.Add(time.Minute).Unix() || entries[0].Subnets != 1 {
		t.Errorf("newest entry = %+v", entries[0])
	}
	if entries[1].Fingerprint != initial.Fingerprint || entries[1].Subnets != 2 {
		t.Errorf("oldest entry = %+v, want the initial snapshot", entries[1])
	}

	var limited []resolver.HistoryEntry
	if err := h.client.Call(context.Background(), resolver.ActionHistory, map[string]any{"limit": 1}, &limited); err != nil {
		t.Fatalf("history with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Fingerprint != snapshot.Fingerprint {
		t.Errorf("limit 1 returned %+v", limited)
	}

	err = h.client.Call(context.Background(), resolver.ActionHistory, map[string]any{"limit": -1}, nil)
	serviceError(t, err, service.CodeInvalidRequest)
}

func TestHistoryDisabled(t *testing.T) {
	h := startResolver(t, testNetwork(t))

	err := h.client.Call(context.Background(), resolver.ActionHistory, nil, nil)
	serviceErr := serviceError(t, err, "")
	if serviceErr.Message != errHistoryDisabled.Error() {
		t.Errorf("message = %q, want %q", serviceErr.Message, errHistoryDisabled.Error())
	}
}
