// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sysroute/sysroute/cmd/sysroute/cli"
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/ref/reftest"
	"github.com/sysroute/sysroute/lib/topology"
)

var someKey = mgmt.MustParseEcdsaKeyID("secp256k1:some_key")

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buffer bytes.Buffer
	previous := cli.Stdout
	cli.Stdout = &buffer
	t.Cleanup(func() { cli.Stdout = previous })
	return &buffer
}

// consistentNetwork has one subnet that owns a range and signs with
// the key it holds.
func consistentNetwork(t *testing.T) *topology.NetworkTopology {
	t.Helper()
	network := topology.New()
	network.Subnets[reftest.SubnetID(0)] = &topology.SubnetTopology{
		EcdsaKeysHeld: map[mgmt.EcdsaKeyID]struct{}{someKey: {}},
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

func writeNetwork(t *testing.T, network *topology.NetworkTopology, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := topology.WriteFile(path, network); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func fingerprintOf(t *testing.T, path string) topology.Fingerprint {
	t.Helper()
	network, err := topology.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	fingerprint, err := topology.ComputeFingerprint(network)
	if err != nil {
		t.Fatalf("ComputeFingerprint: %v", err)
	}
	return fingerprint
}

func TestCheckConsistent(t *testing.T) {
	output := captureStdout(t)
	path := writeNetwork(t, consistentNetwork(t), "topology.yaml")

	if err := runCheck(path, &checkParams{}); err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	text := output.String()
	if !strings.Contains(text, fingerprintOf(t, path).String()) {
		t.Errorf("output does not include the fingerprint:\n%s", text)
	}
	if !strings.Contains(text, "no issues") {
		t.Errorf("output does not report a clean document:\n%s", text)
	}
	if !strings.Contains(text, someKey.String()) {
		t.Errorf("output does not list the signing key:\n%s", text)
	}
}

func TestCheckReportsIssues(t *testing.T) {
	output := captureStdout(t)
	network := consistentNetwork(t)
	// Subnet 7 is not in the subnet list.
	network.EcdsaSigningSubnets[someKey] = append(network.EcdsaSigningSubnets[someKey], reftest.SubnetID(7))
	path := writeNetwork(t, network, "topology.jsonc")

	params := &checkParams{}
	params.OutputJSON = true
	err := runCheck(path, params)

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("runCheck error = %v, want exit code 1", err)
	}

	var result checkResult
	if err := json.Unmarshal(output.Bytes(), &result); err != nil {
		t.Fatalf("decoding output %q: %v", output.String(), err)
	}
	if len(result.Issues) != len(network.Check()) || len(result.Issues) == 0 {
		t.Errorf("issues = %v, want %d", result.Issues, len(network.Check()))
	}
	if !strings.Contains(result.Issues[0], string(topology.IssueUnknownSigner)) {
		t.Errorf("issue %q does not name %s", result.Issues[0], topology.IssueUnknownSigner)
	}
	if result.Subnets != 1 || result.Ranges != 1 {
		t.Errorf("subnets=%d ranges=%d, want 1 and 1", result.Subnets, result.Ranges)
	}
}

func TestCheckMissingFile(t *testing.T) {
	if err := runCheck(filepath.Join(t.TempDir(), "absent.yaml"), &checkParams{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConvertPreservesFingerprint(t *testing.T) {
	captureStdout(t)
	input := writeNetwork(t, consistentNetwork(t), "topology.yaml")
	want := fingerprintOf(t, input)

	for _, name := range []string{"topology.cbor", "topology.cbor.zst", "topology.cbor.lz4", "topology.jsonc"} {
		t.Run(name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), name)
			if err := runConvert(input, output, &convertParams{}); err != nil {
				t.Fatalf("runConvert: %v", err)
			}
			if got := fingerprintOf(t, output); got != want {
				t.Errorf("fingerprint = %s, want %s", got, want)
			}
		})
	}
}

func TestConvertToStdout(t *testing.T) {
	output := captureStdout(t)
	network := consistentNetwork(t)
	input := writeNetwork(t, network, "topology.cbor")

	if err := runConvert(input, "-", &convertParams{Format: "yaml"}); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	parsed, err := topology.Parse(topology.FormatYAML, output.Bytes())
	if err != nil {
		t.Fatalf("stdout is not a YAML topology: %v", err)
	}
	if len(parsed.Subnets) != 1 {
		t.Errorf("parsed %d subnets, want 1", len(parsed.Subnets))
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		format  string
		want    topology.Format
		wantErr bool
	}{
		{name: "from-extension", output: "a.cbor.zst", want: topology.FormatCBORZstd},
		{name: "explicit-matches", output: "a.yml", format: "yaml", want: topology.FormatYAML},
		{name: "explicit-mismatch", output: "a.yaml", format: "cbor", wantErr: true},
		{name: "stdout", output: "-", format: "cbor+lz4", want: topology.FormatCBORLZ4},
		{name: "stdout-needs-format", output: "-", wantErr: true},
		{name: "unknown-extension", output: "a.txt", wantErr: true},
		{name: "unknown-format", output: "-", format: "toml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputFormat(tt.output, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("outputFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("format = %s, want %s", got, tt.want)
			}
		})
	}
}
