//go:build !windows

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package conredir

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/conredirdev/conredir/pkg/config"
	"github.com/conredirdev/conredir/pkg/sink"
)

func TestEnableDisableFDMode(t *testing.T) {
	readOut, _ := setupFakeConsole(t)

	cfg := quietConfig()
	cfg.Mode = config.ModeFD
	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	fmt.Println("A")
	if err := r.Enable(); err != nil {
		t.Fatal(err)
	}
	fmt.Println("B")
	if err := r.Disable(); err != nil {
		t.Fatal(err)
	}
	fmt.Println("C")

	if got := r.StdoutSink().(*sink.MemorySink).String(); got != "B\n" {
		t.Errorf("captured stdout = %q, want %q", got, "B\n")
	}
	if got := readOut(); got != "A\nC\n" {
		t.Errorf("original stdout = %q, want %q", got, "A\nC\n")
	}
}

// The restored stream must stay writable across garbage collections. A
// transient *os.File minted over the live descriptor would carry a close
// finalizer and the first GC after Disable would kill the stream.
func TestFDModeRestoredStreamSurvivesGC(t *testing.T) {
	readOut, _ := setupFakeConsole(t)

	cfg := quietConfig()
	cfg.Mode = config.ModeFD
	r, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Enable(); err != nil {
		t.Fatal(err)
	}
	fmt.Println("captured")
	if err := r.Disable(); err != nil {
		t.Fatal(err)
	}

	runtime.GC()
	runtime.GC()

	if _, err := fmt.Println("after gc"); err != nil {
		t.Fatalf("write to restored stdout failed: %v", err)
	}
	if got := readOut(); got != "after gc\n" {
		t.Errorf("original stdout = %q, want %q", got, "after gc\n")
	}
}
