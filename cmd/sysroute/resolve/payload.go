// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sysroute/sysroute/lib/codec"
	"github.com/sysroute/sysroute/lib/config"
	"github.com/sysroute/sysroute/lib/mgmt"
	"github.com/sysroute/sysroute/lib/ref"
)

// payloadParams selects where a call's payload comes from. At most one
// field may be set; none means an empty payload.
type payloadParams struct {
	PayloadHex  string `json:"payload_hex"  flag:"payload-hex"  desc:"payload as hex-encoded CBOR"`
	PayloadFile string `json:"payload_file" flag:"payload-file" desc:"read the raw CBOR payload from a file"`
	ArgsFile    string `json:"args"         flag:"args"         desc:"build the payload from a YAML argument file"`
}

// callParams are the flags shared by resolve and call.
type callParams struct {
	payloadParams
	Receiver  string `json:"receiver"   flag:"receiver"   desc:"receiver of the call (default: the management canister)"`
	OwnSubnet string `json:"own_subnet" flag:"own-subnet" desc:"subnet the call originates from"`
}

// load returns the payload bytes for method.
func (p *payloadParams) load(methodName string) ([]byte, error) {
	set := 0
	for _, value := range []string{p.PayloadHex, p.PayloadFile, p.ArgsFile} {
		if value != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("--payload-hex, --payload-file and --args are mutually exclusive")
	}

	switch {
	case p.PayloadHex != "":
		payload, err := decodeHex(p.PayloadHex)
		if err != nil {
			return nil, fmt.Errorf("--payload-hex: %w", err)
		}
		return payload, nil
	case p.PayloadFile != "":
		payload, err := os.ReadFile(p.PayloadFile)
		if err != nil {
			return nil, fmt.Errorf("--payload-file: %w", err)
		}
		return payload, nil
	case p.ArgsFile != "":
		method, ok := mgmt.ParseMethod(methodName)
		if !ok {
			return nil, fmt.Errorf("--args: unknown management method %q", methodName)
		}
		return encodeArgsFile(method, p.ArgsFile)
	default:
		return nil, nil
	}
}

// receiver returns the parsed --receiver, defaulting to the management
// canister.
func (p *callParams) receiver() (ref.PrincipalID, error) {
	if p.Receiver == "" {
		return ref.ManagementCanisterID, nil
	}
	principal, err := ref.ParsePrincipal(p.Receiver)
	if err != nil {
		return ref.PrincipalID{}, fmt.Errorf("--receiver: %w", err)
	}
	return principal, nil
}

// encodeArgsFile reads a YAML argument file and encodes it as the
// argument record of method.
func encodeArgsFile(method mgmt.Method, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading argument file: %w", err)
	}
	return encodeArgs(method, data)
}

// encodeArgs converts a YAML document to the argument record of
// method, validates it, and returns its canonical encoding.
func encodeArgs(method mgmt.Method, document []byte) ([]byte, error) {
	args, ok := mgmt.NewArgs(method)
	if !ok {
		return nil, fmt.Errorf("%s takes no routed arguments", method)
	}

	var fields map[string]any
	if err := yaml.Unmarshal(document, &fields); err != nil {
		return nil, fmt.Errorf("parsing argument file: %w", err)
	}
	converted, err := convertHexStrings(fields)
	if err != nil {
		return nil, err
	}

	// Go through CBOR so the record's own decoders (principals,
	// networks, key ids) see the values exactly as a payload would
	// carry them.
	intermediate, err := codec.Marshal(converted)
	if err != nil {
		return nil, fmt.Errorf("encoding argument file: %w", err)
	}
	if err := mgmt.DecodeInto(intermediate, args); err != nil {
		return nil, fmt.Errorf("argument file does not match %s arguments: %w", method, err)
	}
	return codec.Marshal(args)
}

// convertHexStrings replaces every "0x"-prefixed string in value with
// the bytes it spells.
func convertHexStrings(value any) (any, error) {
	switch typed := value.(type) {
	case string:
		if !strings.HasPrefix(typed, "0x") {
			return typed, nil
		}
		decoded, err := hex.DecodeString(typed[2:])
		if err != nil {
			return nil, fmt.Errorf("byte string %q: %w", typed, err)
		}
		return decoded, nil
	case map[string]any:
		converted := make(map[string]any, len(typed))
		for key, element := range typed {
			result, err := convertHexStrings(element)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			converted[key] = result
		}
		return converted, nil
	case []any:
		converted := make([]any, len(typed))
		for i, element := range typed {
			result, err := convertHexStrings(element)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			converted[i] = result
		}
		return converted, nil
	default:
		return value, nil
	}
}

// decodeHex decodes hex text, ignoring whitespace and an optional "0x"
// prefix.
func decodeHex(text string) ([]byte, error) {
	cleaned := strings.Join(strings.Fields(text), "")
	cleaned = strings.TrimPrefix(cleaned, "0x")
	return hex.DecodeString(cleaned)
}

// loadConfig reads the config file named by --config, if any. Only the
// fields a command uses are checked, so a partial config is fine.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, nil
	}
	return config.LoadFile(path)
}
