// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package streamwrap

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/conredirdev/conredir/pkg/panichandler"
)

// HandleWrap redirects a stream by swapping the high-level stream object
// (the os.Stdout / os.Stderr package variable) for a pipe write end. Writes
// that go through the variable are forwarded to the sink; writes made
// directly to the raw descriptor bypass it (use DupWrap for those).
type HandleWrap struct {
	name     string
	slot     **os.File
	orig     *os.File
	pipeR    *os.File
	pipeW    *os.File
	sink     io.Writer
	tee      bool
	captured atomic.Int64
	done     chan struct{}
}

// MakeHandleWrap captures *slot as the original stream and installs the
// replacement in its place. The caller must start Run in a goroutine for
// captured data to flow, and must eventually call Restore.
func MakeHandleWrap(slot **os.File, name string, sink io.Writer, tee bool) (*HandleWrap, error) {
	pipeR, pipeW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipe: %w", name, err)
	}
	h := &HandleWrap{
		name:  name,
		slot:  slot,
		orig:  *slot,
		pipeR: pipeR,
		pipeW: pipeW,
		sink:  sink,
		tee:   tee,
		done:  make(chan struct{}),
	}
	*slot = pipeW
	setOrig(name, h.orig)
	return h, nil
}

func (h *HandleWrap) Name() string {
	return h.name
}

func (h *HandleWrap) Orig() *os.File {
	return h.orig
}

func (h *HandleWrap) BytesCaptured() int64 {
	return h.captured.Load()
}

// ReplacementFile returns the installed pipe write end. Used to point
// writers that hold their own stream reference (the stdlib logger) at the
// active window.
func (h *HandleWrap) ReplacementFile() *os.File {
	return h.pipeW
}

func (h *HandleWrap) Run() {
	defer func() {
		panichandler.PanicHandler("streamwrap.HandleWrap.Run", recover())
	}()
	defer close(h.done)
	buf := make([]byte, 4096)
	for {
		n, err := h.pipeR.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			h.captured.Add(int64(n))
			_, _ = h.sink.Write(chunk)
			if h.tee {
				_, _ = h.orig.Write(chunk)
			}
		}
		if err != nil {
			break
		}
	}
	_ = h.pipeR.Close()
}

// Restore puts the original stream object back in the slot, closes the
// replacement so the reader drains to EOF, and waits for it to finish. The
// captured original reference is cleared and not reused.
func (h *HandleWrap) Restore() (*os.File, error) {
	if h.orig == nil {
		return nil, fmt.Errorf("%s wrap already restored", h.name)
	}
	*h.slot = h.orig
	clearOrig(h.name)
	_ = h.pipeW.Close()
	select {
	case <-h.done:
	case <-time.After(restoreDrainTimeout):
		// reader is stuck in the sink; close its pipe so it exits
		_ = h.pipeR.Close()
	}
	orig := h.orig
	h.orig = nil
	return orig, nil
}
