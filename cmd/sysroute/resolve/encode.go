// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/codec"
	"github.com/sysroute/sysroute/lib/mgmt"
)

type encodeParams struct {
	Output string `json:"output" flag:"output,o" desc:"write the raw CBOR payload to a file instead of printing hex"`
	Diag   bool   `json:"diag"   flag:"diag"     desc:"print CBOR diagnostic notation instead of hex"`
}

// EncodeCommand returns the "encode" command.
func EncodeCommand() *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode a YAML argument file as a management payload",
		Description: `Read a YAML argument file shaped like the argument record of a
management method, validate it, and print the canonical CBOR payload
as hex. Quoted strings prefixed with "0x" are byte strings.

Only methods whose payload decides the destination have argument
records; the others are routed without reading their payload.`,
		Usage: "sysroute encode <method> <args.yaml> [flags]",
		Examples: []cli.Example{
			{
				Description: "Encode a sign_with_ecdsa payload to a file",
				Command:     "sysroute encode sign_with_ecdsa sign.yaml -o sign.cbor",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("encode", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return errors.New("usage: sysroute encode <method> <args.yaml> [flags]")
			}
			return runEncode(args[0], args[1], &params)
		},
	}
}

func runEncode(methodName, argsPath string, params *encodeParams) error {
	method, ok := mgmt.ParseMethod(methodName)
	if !ok {
		return fmt.Errorf("unknown management method %q", methodName)
	}
	payload, err := encodeArgsFile(method, argsPath)
	if err != nil {
		return err
	}

	switch {
	case params.Output != "":
		if err := os.WriteFile(params.Output, payload, 0o644); err != nil {
			return fmt.Errorf("writing payload: %w", err)
		}
	case params.Diag:
		notation, err := codec.Diagnose(payload)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.Stdout, notation)
	default:
		fmt.Fprintln(cli.Stdout, hex.EncodeToString(payload))
	}
	return nil
}
