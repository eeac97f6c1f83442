// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for sysroute
// binaries.
//
// Configuration is loaded from a single file specified by either the
// SYSROUTE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search and no
// environment variable overrides of individual values.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production defaults to JSON logs.
//
// ${VAR} and ${VAR:-default} patterns are expanded in path fields
// after loading.
//
// Key exports:
//
//   - [Config] -- master struct with Service, Topology, Routing, Logging
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
