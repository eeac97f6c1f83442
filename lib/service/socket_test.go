// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sysroute/sysroute/lib/codec"
	"github.com/sysroute/sysroute/lib/testutil"
)

// sendRequest connects to a Unix socket, sends a CBOR request, and
// returns the decoded response envelope.
func sendRequest(t *testing.T, socketPath string, request any) Response {
	t.Helper()

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Errorf("connecting to socket: %v", err)
		return Response{}
	}
	defer conn.Close()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		t.Errorf("writing request: %v", err)
		return Response{}
	}
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Errorf("decoding response: %v", err)
	}
	return response
}

// decodeData unmarshals the Data field of a response into the given
// target.
func decodeData(t *testing.T, response Response, target any) {
	t.Helper()
	if len(response.Data) == 0 {
		t.Error("response has no data to decode")
		return
	}
	if err := codec.Unmarshal(response.Data, target); err != nil {
		t.Errorf("decoding response data: %v", err)
	}
}

func testSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(testutil.SocketDir(t), "test.sock")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// startServer runs server until the test ends and waits for it to
// accept connections. The returned channel yields Serve's result.
func startServer(t *testing.T, server *SocketServer) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		serveDone <- server.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server did not start listening")
	return cancel, serveDone
}

// codedError carries a code the server reports in the response.
type codedError struct{ code string }

func (e *codedError) Error() string { return "coded failure" }
func (e *codedError) Code() string  { return e.code }

func TestSocketServerStatus(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return map[string]any{
			"uptime_seconds": 42,
			"subnets":        3,
		}, nil
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "status"})

	if !response.OK {
		t.Errorf("expected ok=true, got false (%s)", response.Error)
	}
	var data map[string]any
	decodeData(t, response, &data)
	if data["uptime_seconds"] != uint64(42) {
		t.Errorf("expected uptime_seconds=42, got %v (%T)", data["uptime_seconds"], data["uptime_seconds"])
	}
	if data["subnets"] != uint64(3) {
		t.Errorf("expected subnets=3, got %v (%T)", data["subnets"], data["subnets"])
	}
}

func TestSocketServerRejectsBadRequests(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	tests := []struct {
		name     string
		request  any
		wantCode string
	}{
		{name: "unknown-action", request: map[string]string{"action": "nonexistent"}, wantCode: CodeUnknownAction},
		{name: "missing-action", request: map[string]string{"foo": "bar"}, wantCode: CodeInvalidRequest},
		{name: "not-a-map", request: []int{1, 2, 3}, wantCode: CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := sendRequest(t, socketPath, tt.request)
			if response.OK {
				t.Fatal("expected ok=false, got true")
			}
			if response.Error == "" {
				t.Error("expected an error message")
			}
			if response.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", response.Code, tt.wantCode)
			}
		})
	}
}

func TestSocketServerInvalidCBOR(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())
	startServer(t, server)

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer conn.Close()

	// Send garbage bytes that aren't valid CBOR.
	conn.Write([]byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb})
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(conn).Decode(&response); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if response.OK {
		t.Errorf("expected ok=false for invalid CBOR, got true")
	}
	if response.Code != CodeInvalidRequest {
		t.Errorf("code = %q, want %q", response.Code, CodeInvalidRequest)
	}
}

func TestSocketServerHandlerError(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, fmt.Errorf("something broke")
	})
	server.Handle("coded", func(ctx context.Context, raw []byte) (any, error) {
		return nil, fmt.Errorf("resolving: %w", &codedError{code: "subnet_not_found"})
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "fail"})
	if response.OK {
		t.Errorf("expected ok=false, got true")
	}
	if response.Error != "something broke" {
		t.Errorf("expected error='something broke', got %q", response.Error)
	}
	if response.Code != "" {
		t.Errorf("uncoded error reported code %q", response.Code)
	}

	response = sendRequest(t, socketPath, map[string]string{"action": "coded"})
	if response.Code != "subnet_not_found" {
		t.Errorf("code = %q, want the wrapped error's code", response.Code)
	}
	if response.Error != "resolving: coded failure" {
		t.Errorf("error = %q", response.Error)
	}
}

func TestSocketServerNilResult(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	server.Handle("noop", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	response := sendRequest(t, socketPath, map[string]string{"action": "noop"})
	if !response.OK {
		t.Errorf("expected ok=true, got false")
	}
	if len(response.Data) != 0 {
		t.Errorf("expected no data in response, got %d bytes", len(response.Data))
	}
}

func TestSocketServerConcurrentRequests(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			Value int `cbor:"value"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return map[string]any{"value": request.Value}, nil
	})
	startServer(t, server)

	const concurrency = 20
	done := make(chan struct{}, concurrency)
	for i := range concurrency {
		go func() {
			defer func() { done <- struct{}{} }()
			response := sendRequest(t, socketPath, map[string]any{
				"action": "echo",
				"value":  i,
			})
			if !response.OK {
				t.Errorf("request %d: expected ok=true", i)
				return
			}
			var data map[string]any
			decodeData(t, response, &data)
			if data["value"] != uint64(i) {
				t.Errorf("request %d: expected value=%d, got %v", i, i, data["value"])
			}
		}()
	}
	for range concurrency {
		testutil.RequireReceive(t, done, 10*time.Second, "concurrent request did not finish")
	}
}

func TestSocketServerGracefulShutdown(t *testing.T) {
	socketPath := testSocketPath(t)
	server := NewSocketServer(socketPath, testLogger())

	handlerStarted := make(chan struct{})
	handlerRelease := make(chan struct{})
	server.Handle("slow", func(ctx context.Context, raw []byte) (any, error) {
		close(handlerStarted)
		<-handlerRelease
		return map[string]any{"completed": true}, nil
	})
	cancel, serveDone := startServer(t, server)

	responses := make(chan Response, 1)
	go func() {
		responses <- sendRequest(t, socketPath, map[string]string{"action": "slow"})
	}()

	// Cancel while the handler is running, then release it.
	testutil.RequireClosed(t, handlerStarted, 5*time.Second, "handler did not start")
	cancel()
	close(handlerRelease)

	response := testutil.RequireReceive(t, responses, 5*time.Second, "in-flight request did not complete")
	if !response.OK {
		t.Errorf("expected ok=true for in-flight request, got false")
	}
	var data map[string]any
	decodeData(t, response, &data)
	if data["completed"] != true {
		t.Errorf("expected completed=true, got %v", data["completed"])
	}

	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "Serve did not return after cancellation"); err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("socket file not cleaned up after Serve returned")
	}
}

func TestSocketServerReplacesStaleSocket(t *testing.T) {
	socketPath := testSocketPath(t)
	if err := os.WriteFile(socketPath, []byte("stale"), 0o600); err != nil {
		t.Fatalf("writing stale file: %v", err)
	}

	server := NewSocketServer(socketPath, testLogger())
	server.Handle("noop", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	startServer(t, server)

	if response := sendRequest(t, socketPath, map[string]string{"action": "noop"}); !response.OK {
		t.Errorf("request after stale socket removal failed: %s", response.Error)
	}
}

func TestSocketServerDuplicateHandlerPanics(t *testing.T) {
	server := NewSocketServer("/tmp/test.sock", testLogger())
	server.Handle("foo", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for duplicate handler")
		}
	}()
	server.Handle("foo", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
}

func TestErrorCode(t *testing.T) {
	if code := ErrorCode(errors.New("plain")); code != "" {
		t.Errorf("ErrorCode(plain) = %q", code)
	}
	wrapped := fmt.Errorf("outer: %w", &codedError{code: "decode"})
	if code := ErrorCode(wrapped); code != "decode" {
		t.Errorf("ErrorCode(wrapped) = %q, want decode", code)
	}
	joined := errors.Join(errors.New("first"), &codedError{code: "ecdsa_key"})
	if code := ErrorCode(joined); code != "ecdsa_key" {
		t.Errorf("ErrorCode(joined) = %q, want ecdsa_key", code)
	}
}
