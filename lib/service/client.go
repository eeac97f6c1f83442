// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sysroute/sysroute/lib/codec"
)

// dialTimeout is the maximum time to wait for a connection to the
// service socket. It covers only the connect phase.
const dialTimeout = 5 * time.Second

// responseReadTimeout is how long the client waits for the server to
// send a response after writing the request. Matched to the server's
// readTimeout + writeTimeout to account for handler execution time.
const responseReadTimeout = 45 * time.Second

// maxResponseSize is the maximum size of a single CBOR response.
const maxResponseSize = 16 << 20

// ServiceError is returned by Call when the server responds with
// ok=false. It carries the action that failed, the server's message,
// and the failure code when the server reported one. Code makes the
// server's code visible to ErrorCode and routing.Code on the client
// side.
type ServiceError struct {
	Action  string
	Message string
	Reason  string
}

func (e *ServiceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service error on %q (%s): %s", e.Action, e.Reason, e.Message)
	}
	return fmt.Sprintf("service error on %q: %s", e.Action, e.Message)
}

// Code returns the failure code the server reported, or "".
func (e *ServiceError) Code() string { return e.Reason }

// Client sends CBOR requests to a sysroute service socket. Each Call
// opens a new connection (matching the server's one-request-per-
// connection model), sends the request, reads the response, and
// closes the connection.
type Client struct {
	socketPath string
}

// NewClient creates a client for the service listening on socketPath.
// No connection is made until Call.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Call sends a CBOR request to the service and decodes the response.
//
// The fields parameter may contain any handler-specific request
// fields; the client adds "action" automatically. Pass nil for actions
// that take no additional parameters.
//
// On success (response ok=true), if result is non-nil and the
// response contains data, the data is CBOR-decoded into result.
//
// On failure (response ok=false), returns a *ServiceError containing
// the server's error message and code. Connection and encoding errors
// are returned as plain errors (not *ServiceError).
func (c *Client) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	request := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		request[key] = value
	}
	request["action"] = action

	response, err := c.send(ctx, request)
	if err != nil {
		return fmt.Errorf("calling %q on %s: %w", action, c.socketPath, err)
	}

	if !response.OK {
		return &ServiceError{
			Action:  action,
			Message: response.Error,
			Reason:  response.Code,
		}
	}

	if result != nil && len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, result); err != nil {
			return fmt.Errorf("decoding response data for %q: %w", action, err)
		}
	}

	return nil
}

// send connects to the socket, writes the request, and reads the
// response. Each call creates a new connection.
func (c *Client) send(ctx context.Context, request any) (*Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(responseReadTimeout))

	// Abort blocked reads and writes if the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := codec.NewEncoder(conn).Encode(request); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("writing request: %w", ctx.Err())
		}
		return nil, fmt.Errorf("writing request: %w", err)
	}

	// Half-close the write side so the server's read side sees EOF
	// cleanly.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var response Response
	if err := codec.NewDecoder(io.LimitReader(conn, maxResponseSize)).Decode(&response); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("reading response: %w", ctx.Err())
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &response, nil
}
