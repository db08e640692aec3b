// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io"
)

// Capture modes
const (
	// ModeHandle swaps the high-level stream objects (the os.Stdout and
	// os.Stderr package variables).
	ModeHandle = "handle"
	// ModeFD swaps the underlying file descriptors, catching writes that
	// bypass the Go stream variables. POSIX only.
	ModeFD = "fd"
)

// Sink types for SinkSpec
const (
	SinkDiscard = "discard"
	SinkMemory  = "memory"
	SinkFile    = "file"
)

// SinkSpec declaratively describes where a channel's captured output goes.
type SinkSpec struct {
	Type string `json:"type"`
	// Path is the capture file for file sinks.
	Path string `json:"path,omitempty"`
	// MaxBytes bounds raw capture for memory sinks (0 = default).
	MaxBytes int `json:"maxbytes,omitempty"`
	// MaxLines bounds the retained line ring for memory sinks (0 = default).
	MaxLines int `json:"maxlines,omitempty"`
}

type Config struct {
	// Quiet suppresses lifecycle diagnostics.
	Quiet bool `json:"quiet,omitempty"`

	WrapStdout bool `json:"wrapstdout"`
	WrapStderr bool `json:"wrapstderr"`

	// WrapStdlog also reroutes the stdlib default logger for the active
	// window. The stdlib logger holds its own reference to os.Stderr, so
	// handle-mode swaps alone never reach it.
	WrapStdlog bool `json:"wrapstdlog,omitempty"`

	// Mode selects the installation mechanism (ModeHandle or ModeFD).
	Mode string `json:"mode,omitempty"`

	// Tee forwards captured output to the original destination as well as
	// the sink.
	Tee bool `json:"tee,omitempty"`

	StdoutSink SinkSpec `json:"stdoutsink,omitempty"`
	StderrSink SinkSpec `json:"stderrsink,omitempty"`

	// Programmatic sink overrides. When set they take precedence over the
	// corresponding SinkSpec.
	StdoutWriter io.Writer `json:"-"`
	StderrWriter io.Writer `json:"-"`
}

// DefaultConfig wraps both streams in handle mode with in-memory capture.
func DefaultConfig() *Config {
	return &Config{
		WrapStdout: true,
		WrapStderr: true,
		WrapStdlog: true,
		Mode:       ModeHandle,
		StdoutSink: SinkSpec{Type: SinkMemory},
		StderrSink: SinkSpec{Type: SinkMemory},
	}
}

// WithDefaults returns a copy of cfgParam with zero-valued fields filled in.
// A nil cfgParam gets the full default config.
func WithDefaults(cfgParam *Config) *Config {
	if cfgParam == nil {
		return DefaultConfig()
	}
	cfg := *cfgParam
	if cfg.Mode == "" {
		cfg.Mode = ModeHandle
	}
	if cfg.StdoutSink.Type == "" {
		cfg.StdoutSink.Type = SinkMemory
	}
	if cfg.StderrSink.Type == "" {
		cfg.StderrSink.Type = SinkMemory
	}
	return &cfg
}

func (c *Config) Validate() error {
	if !c.WrapStdout && !c.WrapStderr {
		return fmt.Errorf("config wraps neither stdout nor stderr")
	}
	switch c.Mode {
	case ModeHandle, ModeFD:
	default:
		return fmt.Errorf("unknown capture mode %q", c.Mode)
	}
	return nil
}
