// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package base

// Environment variables
const (
	// DisabledEnvName short-circuits autoinit and Init when set.
	DisabledEnvName = "CONREDIR_DISABLED"

	// ConfigJsonEnvName holds inline JSON configuration.
	ConfigJsonEnvName = "CONREDIR_CONFIGJSON"

	// ConfigFileEnvName points at an explicit config file. When set, a
	// missing file is an error rather than a fallback.
	ConfigFileEnvName = "CONREDIR_CONFIGFILE"
)

const ConredirSDKVersion = "v0.2.1"
