// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package utilfn

import (
	"bytes"
)

// MaxLineLength caps accumulated lines. When a line exceeds the cap it is
// emitted truncated and the rest of the line is dropped.
const MaxLineLength = 64 * 1024

// LineBuf splits a stream of read chunks into complete lines, retaining
// partial trailing data between calls.
type LineBuf struct {
	acc        []byte
	inLongLine bool
}

func MakeLineBuf() *LineBuf {
	return &LineBuf{
		acc: make([]byte, 0, 256),
	}
}

// GetPartialAndReset returns any retained partial line and resets the buffer.
func (lb *LineBuf) GetPartialAndReset() string {
	rtn := string(lb.acc)
	lb.acc = lb.acc[:0]
	lb.inLongLine = false
	return rtn
}

// ProcessBuf consumes readBuf and returns the complete lines it closed,
// newline terminators included. Partial lines are retained for the next call.
func (lb *LineBuf) ProcessBuf(readBuf []byte) (lines []string) {
	var pos int
	for pos < len(readBuf) {
		if lb.inLongLine {
			// discarding the tail of an over-long line
			nlIdx := bytes.IndexByte(readBuf[pos:], '\n')
			if nlIdx == -1 {
				return
			}
			pos = pos + nlIdx + 1
			lb.inLongLine = false
			continue
		}
		ch := readBuf[pos]
		pos++
		lb.acc = append(lb.acc, ch)
		if ch == '\n' {
			lines = append(lines, string(lb.acc))
			lb.acc = lb.acc[:0]
			continue
		}
		if len(lb.acc) >= MaxLineLength {
			lines = append(lines, string(lb.acc))
			lb.inLongLine = true
			lb.acc = lb.acc[:0]
		}
	}
	return
}
