//go:build windows

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package streamwrap

import (
	"errors"
	"io"
	"os"
)

// Descriptor-level redirection needs dup2 semantics on the process's std
// handles, which Windows does not expose compatibly. Handle mode works
// everywhere; use it instead.
func MakeDupWrap(origFile *os.File, name string, sink io.Writer, tee bool) (StreamWrap, error) {
	return nil, errors.New("descriptor mode is not supported on windows")
}
