//go:build !linux && !windows

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package streamwrap

import "golang.org/x/sys/unix"

func dup2Wrap(oldfd, newfd int) error {
	return unix.Dup2(oldfd, newfd)
}
