//go:build !windows

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package streamwrap

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/conredirdev/conredir/pkg/panichandler"
)

// DupWrap redirects a stream at the descriptor level: the wrapped fd itself
// is repointed at the replacement pipe, so writes that bypass the Go stream
// variables (cgo, writers that captured the stream at startup) are captured
// too. The original descriptor survives as a duplicate for restore and tee.
type DupWrap struct {
	name        string
	wrappedFD   int
	dupedOrigFD int
	// streamFile is the caller's stream object. Its descriptor is repointed
	// in place, so the same object is handed back by Restore.
	streamFile *os.File
	origFile   *os.File
	pipeR      *os.File
	pipeW      *os.File
	sink       io.Writer
	tee        bool
	captured   atomic.Int64
	done       chan struct{}
}

// MakeDupWrap duplicates streamFile's descriptor and repoints the descriptor
// at a replacement pipe. The caller must start Run in a goroutine and
// eventually call Restore.
func MakeDupWrap(streamFile *os.File, name string, sink io.Writer, tee bool) (StreamWrap, error) {
	fd := int(streamFile.Fd())
	pipeR, pipeW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipe: %w", name, err)
	}
	dupedFD, err := unix.Dup(fd)
	if err != nil {
		_ = pipeR.Close()
		_ = pipeW.Close()
		return nil, fmt.Errorf("failed to dup %s fd: %w", name, err)
	}
	if err := dup2Wrap(int(pipeW.Fd()), fd); err != nil {
		_ = pipeR.Close()
		_ = pipeW.Close()
		_ = unix.Close(dupedFD)
		return nil, fmt.Errorf("failed to redirect %s fd: %w", name, err)
	}
	d := &DupWrap{
		name:        name,
		wrappedFD:   fd,
		dupedOrigFD: dupedFD,
		streamFile:  streamFile,
		origFile:    os.NewFile(uintptr(dupedFD), name),
		pipeR:       pipeR,
		pipeW:       pipeW,
		sink:        sink,
		tee:         tee,
		done:        make(chan struct{}),
	}
	setOrig(name, d.origFile)
	return d, nil
}

func (d *DupWrap) Name() string {
	return d.name
}

func (d *DupWrap) Orig() *os.File {
	return d.origFile
}

func (d *DupWrap) BytesCaptured() int64 {
	return d.captured.Load()
}

func (d *DupWrap) Run() {
	defer func() {
		panichandler.PanicHandler("streamwrap.DupWrap.Run", recover())
	}()
	defer close(d.done)
	buf := make([]byte, 4096)
	for {
		n, err := d.pipeR.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			d.captured.Add(int64(n))
			_, _ = d.sink.Write(chunk)
			if d.tee {
				_, _ = d.origFile.Write(chunk)
			}
		}
		if err != nil {
			break
		}
	}
	_ = d.pipeR.Close()
}

// Restore repoints the wrapped descriptor at the saved original, closes the
// replacement so the reader drains to EOF, and releases the duplicate. The
// caller's stream object is returned as-is; wrapping the live descriptor in
// a fresh os.File would hand it a close finalizer and the next GC would shut
// the stream out from under the process.
func (d *DupWrap) Restore() (*os.File, error) {
	if d.origFile == nil {
		return nil, fmt.Errorf("%s wrap already restored", d.name)
	}
	if err := dup2Wrap(d.dupedOrigFD, d.wrappedFD); err != nil {
		return nil, fmt.Errorf("failed to restore %s fd: %w", d.name, err)
	}
	clearOrig(d.name)
	_ = d.pipeW.Close()
	select {
	case <-d.done:
	case <-time.After(restoreDrainTimeout):
		// reader is stuck in the sink; close its pipe so it exits
		_ = d.pipeR.Close()
	}
	_ = d.origFile.Close()
	d.origFile = nil
	return d.streamFile, nil
}
