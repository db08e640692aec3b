// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package panichandler

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// The report destination is resolved at report time so panic output follows
// the original stderr even while a capture window is active. Set via
// SetOutputFn to break the import cycle with the stream layer.
var outputFn atomic.Pointer[func() io.Writer]

func SetOutputFn(fn func() io.Writer) {
	outputFn.Store(&fn)
}

func getOutput() io.Writer {
	if p := outputFn.Load(); p != nil {
		if w := (*p)(); w != nil {
			return w
		}
	}
	return os.Stderr
}

// PanicHandler logs a recovered panic and converts it to an error. Use with
// a deferred recover() in goroutines that must not take the process down.
func PanicHandler(debugStr string, recoverVal any) error {
	if recoverVal == nil {
		return nil
	}
	w := getOutput()
	fmt.Fprintf(w, "[panic] in %s: %v\n", debugStr, recoverVal)
	fmt.Fprintf(w, "[panic] stack trace:\n%s", string(debug.Stack()))
	if err, ok := recoverVal.(error); ok {
		return fmt.Errorf("panic in %s: %w", debugStr, err)
	}
	return fmt.Errorf("panic in %s: %v", debugStr, recoverVal)
}
