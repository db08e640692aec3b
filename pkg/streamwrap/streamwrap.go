// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package streamwrap installs and removes replacement destinations for the
// process's standard output streams. Each StreamWrap is one redirection
// channel: a replacement pipe installed over a stream, with enough saved
// state to restore the stream exactly as it was.
package streamwrap

import (
	"os"
	"sync"
	"time"
)

// Stream names used by the aggregate's two channels.
const (
	StdoutName = "stdout"
	StderrName = "stderr"
)

// restoreDrainTimeout bounds how long Restore waits for a channel reader to
// see EOF and drain.
var restoreDrainTimeout = 2 * time.Second

type StreamWrap interface {
	// Run is the channel's reader loop; the caller starts it in a goroutine.
	Run()
	// Restore reinstalls the original stream object and waits for the
	// reader to drain, so captured data is complete when it returns. The
	// wait is bounded; if a sink blocks past the drain timeout the reader
	// is cut off and the tail of the capture is lost. Calling Restore on
	// an already-restored wrap is an error.
	Restore() (*os.File, error)
	// Orig returns the captured original stream, or nil once restored.
	Orig() *os.File
	Name() string
	// BytesCaptured reports how many bytes flowed through the channel.
	BytesCaptured() int64
}

// Original stream registry, maintained while wraps are active. Diagnostics
// that must bypass an active capture resolve their destination here.
var (
	origLock  sync.Mutex
	origFiles = map[string]*os.File{}
)

func setOrig(name string, f *os.File) {
	origLock.Lock()
	defer origLock.Unlock()
	origFiles[name] = f
}

func clearOrig(name string) {
	origLock.Lock()
	defer origLock.Unlock()
	delete(origFiles, name)
}

// OrigStdout returns the pre-redirection stdout while a stdout wrap is
// active, os.Stdout otherwise.
func OrigStdout() *os.File {
	origLock.Lock()
	defer origLock.Unlock()
	if f := origFiles[StdoutName]; f != nil {
		return f
	}
	return os.Stdout
}

// OrigStderr returns the pre-redirection stderr while a stderr wrap is
// active, os.Stderr otherwise.
func OrigStderr() *os.File {
	origLock.Lock()
	defer origLock.Unlock()
	if f := origFiles[StderrName]; f != nil {
		return f
	}
	return os.Stderr
}
