// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package mgmt

import (
	"fmt"
	"strings"
)

// BitcoinNetwork selects the Bitcoin network a request is bound for.
// The zero value is not a network; decoding a record without a network
// field fails validation.
type BitcoinNetwork uint8

const (
	BitcoinMainnet BitcoinNetwork = iota + 1
	BitcoinTestnet
	// BitcoinRegtest is a local regression-test network. It routes like
	// the testnet.
	BitcoinRegtest
)

var bitcoinNetworkNames = map[BitcoinNetwork]string{
	BitcoinMainnet: "mainnet",
	BitcoinTestnet: "testnet",
	BitcoinRegtest: "regtest",
}

// ParseBitcoinNetwork parses a network name ignoring case, so
// "Mainnet", "mainnet" and "MAINNET" all select the main network.
func ParseBitcoinNetwork(name string) (BitcoinNetwork, error) {
	for network, canonical := range bitcoinNetworkNames {
		if strings.EqualFold(name, canonical) {
			return network, nil
		}
	}
	return 0, fmt.Errorf("unknown bitcoin network %q (expected mainnet, testnet or regtest)", name)
}

// Valid reports whether n is a declared network.
func (n BitcoinNetwork) Valid() bool {
	_, ok := bitcoinNetworkNames[n]
	return ok
}

// IsTest reports whether n is a test network (testnet or regtest).
func (n BitcoinNetwork) IsTest() bool {
	return n == BitcoinTestnet || n == BitcoinRegtest
}

// String returns the lower-case network name.
func (n BitcoinNetwork) String() string {
	if name, ok := bitcoinNetworkNames[n]; ok {
		return name
	}
	return fmt.Sprintf("BitcoinNetwork(%d)", uint8(n))
}

// MarshalText implements encoding.TextMarshaler.
func (n BitcoinNetwork) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", n)
	}
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *BitcoinNetwork) UnmarshalText(data []byte) error {
	parsed, err := ParseBitcoinNetwork(string(data))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
