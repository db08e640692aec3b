// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"sync"

	"github.com/emirpasic/gods/queues/circularbuffer"

	"github.com/conredirdev/conredir/pkg/utilfn"
)

const (
	DefaultMaxCaptureBytes = 1024 * 1024
	DefaultMaxCaptureLines = 10000
)

// MemorySink captures output in memory: the raw byte stream up to a cap,
// plus a bounded ring of the most recent complete lines.
type MemorySink struct {
	lock      sync.Mutex
	buf       []byte
	maxBytes  int
	truncated bool
	lineBuf   *utilfn.LineBuf
	lines     *circularbuffer.Queue
}

func MakeMemorySink(maxBytes int, maxLines int) *MemorySink {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCaptureBytes
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxCaptureLines
	}
	return &MemorySink{
		buf:      make([]byte, 0, 4096),
		maxBytes: maxBytes,
		lineBuf:  utilfn.MakeLineBuf(),
		lines:    circularbuffer.New(maxLines),
	}
}

func (s *MemorySink) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	chunk := p
	if len(s.buf)+len(chunk) > s.maxBytes {
		if keep := s.maxBytes - len(s.buf); keep > 0 {
			s.buf = append(s.buf, chunk[:keep]...)
		}
		s.truncated = true
	} else {
		s.buf = append(s.buf, chunk...)
	}
	for _, line := range s.lineBuf.ProcessBuf(p) {
		s.lines.Enqueue(line)
	}
	return len(p), nil
}

// Bytes returns a copy of the raw captured bytes (up to the byte cap).
func (s *MemorySink) Bytes() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	rtn := make([]byte, len(s.buf))
	copy(rtn, s.buf)
	return rtn
}

func (s *MemorySink) String() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return string(s.buf)
}

// Lines returns the most recent complete captured lines, oldest first.
// A trailing line with no newline yet is not included.
func (s *MemorySink) Lines() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	vals := s.lines.Values()
	rtn := make([]string, 0, len(vals))
	for _, v := range vals {
		rtn = append(rtn, v.(string))
	}
	return rtn
}

// Truncated reports whether raw capture hit the byte cap.
func (s *MemorySink) Truncated() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.truncated
}

// Reset discards all captured data, keeping the sink usable.
func (s *MemorySink) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.buf = s.buf[:0]
	s.truncated = false
	s.lineBuf.GetPartialAndReset()
	s.lines.Clear()
}

func (s *MemorySink) Close() error {
	return nil
}
