// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build no_conredir

// No-op build of the SDK. Building with -tags no_conredir compiles the
// redirection machinery out entirely: streams are never touched and every
// operation succeeds without effect.
package conredir

import (
	"errors"

	"github.com/conredirdev/conredir/pkg/config"
	"github.com/conredirdev/conredir/pkg/session"
	"github.com/conredirdev/conredir/pkg/sink"
)

type Config = config.Config

var (
	ErrAlreadyEnabled = errors.New("conredir: already enabled")
	ErrNotEnabled     = errors.New("conredir: not enabled")
	ErrClosed         = errors.New("conredir: redirector closed")
	ErrNotInitialized = errors.New("conredir: Init has not been called")
)

// Redirector is inert when no_conredir is set.
type Redirector struct{}

func New(cfgParam *config.Config) (*Redirector, error) {
	return &Redirector{}, nil
}

func (r *Redirector) Enable() error {
	return nil
}

func (r *Redirector) Disable() error {
	return nil
}

func (r *Redirector) Close() error {
	return nil
}

func (r *Redirector) Active() bool {
	return false
}

func (r *Redirector) StdoutSink() sink.Sink {
	return nil
}

func (r *Redirector) StderrSink() sink.Sink {
	return nil
}

func (r *Redirector) Sessions() []*session.Session {
	return nil
}

func (r *Redirector) CurrentSession() *session.Session {
	return nil
}

func Init(cfgParam *config.Config) (*Redirector, error) {
	return &Redirector{}, nil
}

func Enable() error {
	return nil
}

func Disable() error {
	return nil
}

func Shutdown() error {
	return nil
}
