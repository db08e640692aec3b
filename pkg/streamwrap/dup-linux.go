//go:build linux

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package streamwrap

import "golang.org/x/sys/unix"

// dup2Wrap on Linux uses Dup3 with flags 0 (dup2 is absent on arm64)
func dup2Wrap(oldfd, newfd int) error {
	return unix.Dup3(oldfd, newfd, 0)
}
