// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package streamwrap

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func makeOrigFile(t *testing.T) (*os.File, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orig.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
}

func TestHandleWrapInstallRestore(t *testing.T) {
	origFile, readOrig := makeOrigFile(t)
	slot := origFile

	var capture bytes.Buffer
	hw, err := MakeHandleWrap(&slot, "teststream", &capture, false)
	if err != nil {
		t.Fatal(err)
	}
	go hw.Run()

	if slot == origFile {
		t.Fatal("slot not swapped after install")
	}
	if hw.Orig() != origFile {
		t.Error("Orig() does not return the captured original")
	}

	fmt.Fprint(slot, "hello")

	restored, err := hw.Restore()
	if err != nil {
		t.Fatal(err)
	}
	if restored != origFile {
		t.Error("Restore did not return the original stream")
	}
	if slot != origFile {
		t.Error("slot not restored")
	}
	if got := capture.String(); got != "hello" {
		t.Errorf("captured %q, want %q", got, "hello")
	}
	if got := hw.BytesCaptured(); got != int64(len("hello")) {
		t.Errorf("BytesCaptured = %d, want %d", got, len("hello"))
	}
	if got := readOrig(); got != "" {
		t.Errorf("original received %q during redirection", got)
	}
	if hw.Orig() != nil {
		t.Error("Orig() not cleared after restore")
	}
	if _, err := hw.Restore(); err == nil {
		t.Error("second Restore should fail")
	}
}

func TestHandleWrapTee(t *testing.T) {
	origFile, readOrig := makeOrigFile(t)
	slot := origFile

	var capture bytes.Buffer
	hw, err := MakeHandleWrap(&slot, "teststream", &capture, true)
	if err != nil {
		t.Fatal(err)
	}
	go hw.Run()

	fmt.Fprint(slot, "both")
	if _, err := hw.Restore(); err != nil {
		t.Fatal(err)
	}
	if got := capture.String(); got != "both" {
		t.Errorf("captured %q, want %q", got, "both")
	}
	if got := readOrig(); got != "both" {
		t.Errorf("original got %q, want %q", got, "both")
	}
}

type blockingWriter struct {
	release chan struct{}
}

func (b *blockingWriter) Write(p []byte) (int, error) {
	<-b.release
	return len(p), nil
}

// A sink that never returns must not hang Restore; the drain wait is
// bounded and the stream comes back regardless.
func TestRestoreDrainTimeout(t *testing.T) {
	prev := restoreDrainTimeout
	restoreDrainTimeout = 50 * time.Millisecond
	t.Cleanup(func() { restoreDrainTimeout = prev })

	origFile, _ := makeOrigFile(t)
	slot := origFile

	bw := &blockingWriter{release: make(chan struct{})}
	hw, err := MakeHandleWrap(&slot, "teststream", bw, false)
	if err != nil {
		t.Fatal(err)
	}
	go hw.Run()
	t.Cleanup(func() { close(bw.release) })

	fmt.Fprint(slot, "stuck")

	start := time.Now()
	if _, err := hw.Restore(); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Restore took %v, drain wait not bounded", elapsed)
	}
	if slot != origFile {
		t.Error("slot not restored after drain timeout")
	}
}

func TestOrigAccessors(t *testing.T) {
	origFile, _ := makeOrigFile(t)
	slot := origFile

	var capture bytes.Buffer
	hw, err := MakeHandleWrap(&slot, StdoutName, &capture, false)
	if err != nil {
		t.Fatal(err)
	}
	go hw.Run()

	if OrigStdout() != origFile {
		t.Error("OrigStdout should return the captured original while active")
	}
	if _, err := hw.Restore(); err != nil {
		t.Fatal(err)
	}
	if OrigStdout() != os.Stdout {
		t.Error("OrigStdout should fall back to os.Stdout after restore")
	}
}
