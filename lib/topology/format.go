// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/sysroute/sysroute/lib/codec"
)

// Format is a topology document encoding.
type Format uint8

const (
	// FormatYAML is the hand-edited form.
	FormatYAML Format = iota + 1

	// FormatJSONC is JSON extended with // line comments, /* block
	// comments */ and trailing commas. Written as plain indented JSON.
	FormatJSONC

	// FormatCBOR is deterministic CBOR, the form Fingerprint hashes.
	FormatCBOR

	// FormatCBORZstd is CBOR compressed with zstd. Best ratio; used for
	// snapshots of large networks.
	FormatCBORZstd

	// FormatCBORLZ4 is CBOR in an LZ4 frame. Fastest to decode.
	FormatCBORLZ4
)

// formatExtensions lists the file suffixes of each format. Longer
// suffixes come first so ".cbor.zst" is not matched as ".zst" alone.
var formatExtensions = []struct {
	suffix string
	format Format
}{
	{".cbor.zst", FormatCBORZstd},
	{".cbor.lz4", FormatCBORLZ4},
	{".cbor", FormatCBOR},
	{".yaml", FormatYAML},
	{".yml", FormatYAML},
	{".jsonc", FormatJSONC},
	{".json", FormatJSONC},
}

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSONC:
		return "jsonc"
	case FormatCBOR:
		return "cbor"
	case FormatCBORZstd:
		return "cbor+zstd"
	case FormatCBORLZ4:
		return "cbor+lz4"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name as produced by String.
func ParseFormat(name string) (Format, error) {
	for _, format := range []Format{FormatYAML, FormatJSONC, FormatCBOR, FormatCBORZstd, FormatCBORLZ4} {
		if format.String() == name {
			return format, nil
		}
	}
	return 0, fmt.Errorf("unknown topology format %q (expected yaml, jsonc, cbor, cbor+zstd or cbor+lz4)", name)
}

// FormatFromPath selects the format from a file name's extension.
func FormatFromPath(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	for _, extension := range formatExtensions {
		if strings.HasSuffix(base, extension.suffix) {
			return extension.format, nil
		}
	}
	return 0, fmt.Errorf("cannot determine topology format of %q from its extension", path)
}

// zstdEncoder and zstdDecoder are shared. Both are safe for concurrent
// use through EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("topology: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		panic("topology: zstd decoder initialization failed: " + err.Error())
	}
}

// maxDecodedSize bounds the decompressed size of a snapshot.
const maxDecodedSize = 256 << 20

// Parse decodes a document in the given format and builds the topology.
func Parse(format Format, data []byte) (*NetworkTopology, error) {
	document, err := ParseDocument(format, data)
	if err != nil {
		return nil, err
	}
	return document.Build()
}

// ParseDocument decodes a document without building it.
func ParseDocument(format Format, data []byte) (*Document, error) {
	var document Document
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&document); err != nil {
			return nil, fmt.Errorf("parsing yaml topology: %w", err)
		}

	case FormatJSONC:
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&document); err != nil {
			return nil, fmt.Errorf("parsing jsonc topology: %w", err)
		}

	case FormatCBOR, FormatCBORZstd, FormatCBORLZ4:
		raw, err := decompress(format, data)
		if err != nil {
			return nil, err
		}
		if err := codec.Unmarshal(raw, &document); err != nil {
			return nil, fmt.Errorf("parsing cbor topology: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported topology format %s", format)
	}
	return &document, nil
}

// Marshal encodes the topology's canonical document in the given
// format.
func Marshal(format Format, t *NetworkTopology) ([]byte, error) {
	document := NewDocument(t)
	switch format {
	case FormatYAML:
		var buffer bytes.Buffer
		encoder := yaml.NewEncoder(&buffer)
		encoder.SetIndent(2)
		if err := encoder.Encode(document); err != nil {
			return nil, fmt.Errorf("encoding yaml topology: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml topology: %w", err)
		}
		return buffer.Bytes(), nil

	case FormatJSONC:
		data, err := json.MarshalIndent(document, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json topology: %w", err)
		}
		return append(data, '\n'), nil

	case FormatCBOR, FormatCBORZstd, FormatCBORLZ4:
		raw, err := codec.Marshal(document)
		if err != nil {
			return nil, fmt.Errorf("encoding cbor topology: %w", err)
		}
		return compress(format, raw)

	default:
		return nil, fmt.Errorf("unsupported topology format %s", format)
	}
}

// ReadFile reads and builds a topology, selecting the format from the
// file extension.
func ReadFile(path string) (*NetworkTopology, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology: %w", err)
	}
	topology, err := Parse(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return topology, nil
}

// WriteFile writes the topology to path in the format selected by its
// extension. The file is written to a temporary name in the same
// directory and renamed into place, so a Watcher never reads a partial
// file.
func WriteFile(path string, t *NetworkTopology) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(format, t)
	if err != nil {
		return err
	}

	temporary, err := os.CreateTemp(filepath.Dir(path), ".topology-*")
	if err != nil {
		return fmt.Errorf("writing topology: %w", err)
	}
	defer os.Remove(temporary.Name())

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing topology: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing topology: %w", err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("writing topology: %w", err)
	}
	return nil
}

func compress(format Format, raw []byte) ([]byte, error) {
	switch format {
	case FormatCBORZstd:
		return zstdEncoder.EncodeAll(raw, nil), nil

	case FormatCBORLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(raw); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil

	default:
		return raw, nil
	}
}

func decompress(format Format, data []byte) ([]byte, error) {
	switch format {
	case FormatCBORZstd:
		raw, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return raw, nil

	case FormatCBORLZ4:
		reader := io.LimitReader(lz4.NewReader(bytes.NewReader(data)), maxDecodedSize+1)
		raw, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if len(raw) > maxDecodedSize {
			return nil, fmt.Errorf("lz4 decompress: snapshot exceeds %d bytes", maxDecodedSize)
		}
		return raw, nil

	default:
		return data, nil
	}
}
