// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alexflint/go-filemutex"

	"github.com/conredirdev/conredir/pkg/streamwrap"
)

// FlushIntervalMs is the interval in milliseconds at which pending capture
// data is flushed to disk.
const FlushIntervalMs = 1000

// FileSink appends captured output to a file. Writes are buffered and
// flushed on an interval; a sibling .lock file serializes flushes across
// processes appending to the same capture file.
type FileSink struct {
	file     *os.File
	flock    *filemutex.FileMutex
	lock     sync.Mutex
	pending  bytes.Buffer
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func MakeFileSink(filename string) (*FileSink, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	flock, err := filemutex.New(filename + ".lock")
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to create capture lock file: %w", err)
	}
	s := &FileSink{
		file:     file,
		flock:    flock,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.flushLoop()
	return s, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pending.Write(p)
}

func (s *FileSink) flushLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(FlushIntervalMs * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.stopChan:
			// Final flush before exiting
			s.flush()
			return
		}
	}
}

func (s *FileSink) flush() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.pending.Len() == 0 {
		return
	}
	if err := s.flock.Lock(); err == nil {
		defer func() {
			_ = s.flock.Unlock()
		}()
	}
	if _, err := s.file.Write(s.pending.Bytes()); err != nil {
		// Report to the real stderr and continue. Writing through os.Stderr
		// here could feed the error back into an active capture.
		fmt.Fprintf(streamwrap.OrigStderr(), "conredir: error writing capture file: %v\n", err)
	}
	s.pending.Reset()
}

// Close stops the flush loop, flushes pending data, and closes the file.
func (s *FileSink) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	return s.file.Close()
}
