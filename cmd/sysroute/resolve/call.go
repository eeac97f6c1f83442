// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/config"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/schema/resolver"
	"github.com/sysroute/sysroute/lib/service"
)

// connectionParams locate a running sysroute-service.
type connectionParams struct {
	SocketPath string        `json:"socket"  flag:"socket"  desc:"service socket (default: service.socket_path from --config)"`
	Config     string        `json:"config"  flag:"config,c" desc:"sysroute.yaml supplying the socket path"`
	Timeout    time.Duration `json:"timeout" flag:"timeout" default:"10s" desc:"how long to wait for the service"`
}

// client returns a service client for the configured socket.
func (p *connectionParams) client() (*service.Client, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		cfg, err := loadConfig(p.Config)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			cfg = config.Default()
		}
		socketPath = cfg.Service.SocketPath
	}
	return service.NewClient(socketPath), nil
}

func (p *connectionParams) timeoutContext() (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), p.Timeout)
}

type callCommandParams struct {
	callParams
	connectionParams
	cli.JSONOutput
}

// CallCommand returns the "call" command.
func CallCommand() *cli.Command {
	var params callCommandParams

	return &cli.Command{
		Name:    "call",
		Summary: "Resolve a call's destination through a running service",
		Description: `Ask a running sysroute-service for the destination of a management
call. The service resolves against its current topology snapshot and
reports the snapshot's fingerprint with the answer.

Without --own-subnet the service uses its configured own subnet.`,
		Usage: "sysroute call <method> [flags]",
		Examples: []cli.Example{
			{
				Description: "Route an install_code call through the local service",
				Command:     "sysroute call install_code --args install.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("call", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("usage: sysroute call <method> [flags]")
			}
			return runCall(args[0], &params)
		},
	}
}

func runCall(methodName string, params *callCommandParams) error {
	payload, err := params.load(methodName)
	if err != nil {
		return err
	}
	request := resolver.ResolveRequest{
		Method:  methodName,
		Payload: payload,
	}
	if params.Receiver != "" {
		receiver, err := params.receiver()
		if err != nil {
			return err
		}
		request.Receiver = &receiver
	}
	if params.OwnSubnet != "" {
		subnet, err := ref.ParseSubnetID(params.OwnSubnet)
		if err != nil {
			return fmt.Errorf("--own-subnet: %w", err)
		}
		request.OwnSubnet = &subnet
	}

	client, err := params.client()
	if err != nil {
		return err
	}
	ctx, cancel := params.timeoutContext()
	defer cancel()

	var response resolver.ResolveResponse
	if err := client.Call(ctx, resolver.ActionResolve, request.Fields(), &response); err != nil {
		return err
	}

	if done, err := params.EmitJSON(response); done {
		return err
	}
	printResolution(response)
	return nil
}
