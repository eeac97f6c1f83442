// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/topology"
)

type convertParams struct {
	Format  string `json:"format"  flag:"format,f" desc:"output format (yaml, jsonc, cbor, cbor+zstd, cbor+lz4); default from the output extension"`
	Verbose bool   `json:"verbose" flag:"verbose,v" desc:"log progress to stderr"`
}

func convertCommand() *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "convert",
		Summary: "Convert a topology document between formats",
		Description: `Read a topology document and write it in another format. The output
is canonical: converting a document and converting it back yields the
same fingerprint.

An output of "-" writes to stdout and requires --format.`,
		Usage: "sysroute topology convert <input> <output> [flags]",
		Examples: []cli.Example{
			{
				Description: "Compress a hand-edited topology for deployment",
				Command:     "sysroute topology convert topology.yaml topology.cbor.zst",
			},
			{
				Description: "Print a binary snapshot as YAML",
				Command:     "sysroute topology convert topology.cbor.lz4 - --format yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("convert", &params)
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return errors.New("usage: sysroute topology convert <input> <output> [flags]")
			}
			return runConvert(args[0], args[1], &params)
		},
	}
}

func runConvert(input, output string, params *convertParams) error {
	level := slog.LevelWarn
	if params.Verbose {
		level = slog.LevelInfo
	}
	logger := cli.NewCommandLogger(level).With("command", "topology/convert")

	format, err := outputFormat(output, params.Format)
	if err != nil {
		return err
	}

	network, err := topology.ReadFile(input)
	if err != nil {
		return err
	}
	data, err := topology.Marshal(format, network)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := cli.Stdout.Write(data)
		return err
	}
	if err := topology.WriteFile(output, network); err != nil {
		return err
	}
	logger.Info("topology converted",
		"input", input,
		"output", output,
		"format", format,
		"bytes", len(data),
	)
	return nil
}

// outputFormat resolves the output format. An explicit --format must
// agree with the output file's extension, since WriteFile and later
// reads choose the format from it.
func outputFormat(output, name string) (topology.Format, error) {
	if output == "-" {
		if name == "" {
			return 0, errors.New("--format is required when writing to stdout")
		}
		return topology.ParseFormat(name)
	}

	fromPath, err := topology.FormatFromPath(output)
	if err != nil {
		return 0, err
	}
	if name == "" {
		return fromPath, nil
	}
	explicit, err := topology.ParseFormat(name)
	if err != nil {
		return 0, err
	}
	if explicit != fromPath {
		return 0, fmt.Errorf("--format %s does not match output extension (%s)", explicit, fromPath)
	}
	return explicit, nil
}
