// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conredirdev/conredir/pkg/config"
)

func TestFileSinkWriteAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	s, err := MakeFileSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write([]byte("captured output\n")); err != nil {
		t.Fatal(err)
	}
	// Close performs the final flush
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "captured output\n" {
		t.Errorf("file contents = %q", string(data))
	}
	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	for _, chunk := range []string{"one\n", "two\n"} {
		s, err := MakeFileSink(path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("file contents = %q, want %q", string(data), "one\ntwo\n")
	}
}

func TestFromSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    config.SinkSpec
		wantErr bool
	}{
		{
			name: "discard",
			spec: config.SinkSpec{Type: config.SinkDiscard},
		},
		{
			name: "memory default",
			spec: config.SinkSpec{Type: config.SinkMemory},
		},
		{
			name: "empty type defaults to memory",
			spec: config.SinkSpec{},
		},
		{
			name:    "file without path",
			spec:    config.SinkSpec{Type: config.SinkFile},
			wantErr: true,
		},
		{
			name:    "unknown type",
			spec:    config.SinkSpec{Type: "carrier-pigeon"},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := FromSpec(tc.spec)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.Write([]byte("x")); err != nil {
				t.Errorf("sink write failed: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("sink close failed: %v", err)
			}
		})
	}
}

func TestFromSpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.log")
	s, err := FromSpec(config.SinkSpec{Type: config.SinkFile, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Write([]byte("via spec\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "via spec\n" {
		t.Errorf("file contents = %q", string(data))
	}
}
