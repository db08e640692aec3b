// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package sink provides destinations for captured console output. The
// redirection channels treat a sink as an opaque io.Writer; ownership stays
// with whoever built it (the redirector, for sinks built from config).
package sink

import (
	"fmt"
	"io"

	"github.com/conredirdev/conredir/pkg/config"
)

// Sink is the destination a redirection channel forwards captured output to.
type Sink interface {
	io.WriteCloser
}

type discardSink struct{}

func (discardSink) Write(p []byte) (int, error) {
	return len(p), nil
}

func (discardSink) Close() error {
	return nil
}

// Discard returns a sink that drops everything written to it.
func Discard() Sink {
	return discardSink{}
}

type writerSink struct {
	w io.Writer
}

func (s writerSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Close is a no-op; the wrapped writer's lifetime stays with the caller.
func (s writerSink) Close() error {
	return nil
}

// Writer adapts a caller-supplied io.Writer into a Sink.
func Writer(w io.Writer) Sink {
	return writerSink{w: w}
}

// FromSpec builds a sink from a declarative config spec.
func FromSpec(spec config.SinkSpec) (Sink, error) {
	switch spec.Type {
	case config.SinkDiscard:
		return Discard(), nil
	case config.SinkMemory, "":
		return MakeMemorySink(spec.MaxBytes, spec.MaxLines), nil
	case config.SinkFile:
		if spec.Path == "" {
			return nil, fmt.Errorf("file sink requires a path")
		}
		return MakeFileSink(spec.Path)
	default:
		return nil, fmt.Errorf("unknown sink type %q", spec.Type)
	}
}
