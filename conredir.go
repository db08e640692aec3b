// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build !no_conredir

// Package conredir temporarily reroutes a process's standard output and
// standard error to configurable capture sinks, restoring the original
// streams exactly when disabled. A Redirector is a scoped resource: Enable
// and Disable form an acquire/release pair, and Close disables implicitly
// when still active so a deferred Close can never leave redirection stuck on.
package conredir

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/conredirdev/conredir/pkg/base"
	"github.com/conredirdev/conredir/pkg/config"
	"github.com/conredirdev/conredir/pkg/global"
	"github.com/conredirdev/conredir/pkg/panichandler"
	"github.com/conredirdev/conredir/pkg/session"
	"github.com/conredirdev/conredir/pkg/sink"
	"github.com/conredirdev/conredir/pkg/streamwrap"
)

// Re-export so callers can use conredir.Config directly.
type Config = config.Config

// Misuse of the Enable/Disable pairing is surfaced, never silently ignored:
// a swallowed double Enable would re-capture the replacement as "original"
// and a later Disable would restore the wrong stream.
var (
	ErrAlreadyEnabled = errors.New("conredir: already enabled")
	ErrNotEnabled     = errors.New("conredir: not enabled")
	ErrClosed         = errors.New("conredir: redirector closed")
	ErrNotInitialized = errors.New("conredir: Init has not been called")
)

func init() {
	panichandler.SetOutputFn(func() io.Writer {
		return streamwrap.OrigStderr()
	})
}

// Redirector owns one redirection channel per standard stream and swaps
// both between original and redirected states as a unit.
type Redirector struct {
	lock sync.Mutex
	cfg  *config.Config

	stdoutSink sink.Sink
	stderrSink sink.Sink

	stdoutWrap streamwrap.StreamWrap
	stderrWrap streamwrap.StreamWrap

	// stdlib log writer saved while the window is active
	prevLogWriter io.Writer
	logSwapped    bool

	registry *session.Registry
	cur      *session.Session

	active bool
	closed bool

	diag *logrus.Logger
}

// diagWriter resolves the original stderr at write time so the redirector's
// own diagnostics never recurse into an active capture.
type diagWriter struct{}

func (diagWriter) Write(p []byte) (int, error) {
	return streamwrap.OrigStderr().Write(p)
}

// New builds a redirector bound to the process's standard streams. A nil
// config gets defaults: wrap both streams, handle mode, memory sinks.
func New(cfgParam *config.Config) (*Redirector, error) {
	cfg := config.WithDefaults(cfgParam)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stdoutSink, stderrSink, err := buildSinks(cfg)
	if err != nil {
		return nil, err
	}
	diag := logrus.New()
	diag.SetOutput(diagWriter{})
	if cfg.Quiet {
		diag.SetLevel(logrus.WarnLevel)
	}
	return &Redirector{
		cfg:        cfg,
		stdoutSink: stdoutSink,
		stderrSink: stderrSink,
		registry:   session.MakeRegistry(),
		diag:       diag,
	}, nil
}

func buildSinks(cfg *config.Config) (sink.Sink, sink.Sink, error) {
	var stdoutSink, stderrSink sink.Sink
	var err error
	if cfg.WrapStdout {
		if cfg.StdoutWriter != nil {
			stdoutSink = sink.Writer(cfg.StdoutWriter)
		} else if stdoutSink, err = sink.FromSpec(cfg.StdoutSink); err != nil {
			return nil, nil, fmt.Errorf("stdout sink: %w", err)
		}
	}
	if cfg.WrapStderr {
		if cfg.StderrWriter != nil {
			stderrSink = sink.Writer(cfg.StderrWriter)
		} else if stderrSink, err = sink.FromSpec(cfg.StderrSink); err != nil {
			if stdoutSink != nil {
				_ = stdoutSink.Close()
			}
			return nil, nil, fmt.Errorf("stderr sink: %w", err)
		}
	}
	return stdoutSink, stderrSink, nil
}

// Enable captures the current stream objects and installs the replacement
// channels. All-or-nothing: if the stderr channel fails after the stdout
// channel succeeded, the stdout swap is rolled back before returning.
func (r *Redirector) Enable() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.active {
		return ErrAlreadyEnabled
	}

	var streams []string
	if r.cfg.WrapStdout {
		w, err := r.makeWrap(&os.Stdout, streamwrap.StdoutName, r.stdoutSink)
		if err != nil {
			return err
		}
		r.stdoutWrap = w
		go w.Run()
		streams = append(streams, streamwrap.StdoutName)
	}
	if r.cfg.WrapStderr {
		w, err := r.makeWrap(&os.Stderr, streamwrap.StderrName, r.stderrSink)
		if err != nil {
			if r.stdoutWrap != nil {
				_, _ = r.stdoutWrap.Restore()
				r.stdoutWrap = nil
			}
			return err
		}
		r.stderrWrap = w
		go w.Run()
		streams = append(streams, streamwrap.StderrName)
	}

	if r.cfg.WrapStdlog && r.stderrWrap != nil {
		if hw, ok := r.stderrWrap.(*streamwrap.HandleWrap); ok {
			r.prevLogWriter = log.Writer()
			log.SetOutput(hw.ReplacementFile())
			r.logSwapped = true
		}
	}

	r.cur = r.registry.Start(r.cfg.Mode, streams)
	r.active = true
	global.Active.Store(true)
	r.diag.WithField("session", r.cur.Id).Info("console redirection enabled")
	return nil
}

func (r *Redirector) makeWrap(slot **os.File, name string, snk sink.Sink) (streamwrap.StreamWrap, error) {
	if r.cfg.Mode == config.ModeFD {
		return streamwrap.MakeDupWrap(*slot, name, snk, r.cfg.Tee)
	}
	hw, err := streamwrap.MakeHandleWrap(slot, name, snk, r.cfg.Tee)
	if err != nil {
		return nil, err
	}
	return hw, nil
}

// Disable reinstalls the original stream objects and waits for the channel
// readers to drain, so sinks hold the complete capture when it returns.
// The sinks stay readable until Close or the next Enable.
func (r *Redirector) Disable() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return ErrClosed
	}
	if !r.active {
		return ErrNotEnabled
	}
	r.disableLocked()
	return nil
}

// must be called while holding the lock
func (r *Redirector) disableLocked() {
	// the stdlib logger points at the stderr replacement; detach it first
	if r.logSwapped {
		log.SetOutput(r.prevLogWriter)
		r.prevLogWriter = nil
		r.logSwapped = false
	}
	captured := make(map[string]int64)
	if r.stdoutWrap != nil {
		if _, err := r.stdoutWrap.Restore(); err != nil {
			r.diag.WithError(err).Warn("failed to restore stdout")
		}
		captured[streamwrap.StdoutName] = r.stdoutWrap.BytesCaptured()
		r.stdoutWrap = nil
	}
	if r.stderrWrap != nil {
		if _, err := r.stderrWrap.Restore(); err != nil {
			r.diag.WithError(err).Warn("failed to restore stderr")
		}
		captured[streamwrap.StderrName] = r.stderrWrap.BytesCaptured()
		r.stderrWrap = nil
	}
	r.registry.Finish(r.cur, captured)
	r.diag.WithField("session", r.cur.Id).Info("console redirection disabled")
	r.cur = nil
	r.active = false
	global.Active.Store(false)
}

// Close disables redirection if still active and releases the owned sinks.
// The redirector cannot be reused afterwards.
func (r *Redirector) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.closed {
		return nil
	}
	if r.active {
		r.disableLocked()
	}
	r.closed = true
	var firstErr error
	for _, s := range []sink.Sink{r.stdoutSink, r.stderrSink} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Redirector) Active() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.active
}

// StdoutSink returns the stdout channel's sink (nil when stdout is not
// wrapped). For memory sinks, type-assert to *sink.MemorySink to inspect
// captured data.
func (r *Redirector) StdoutSink() sink.Sink {
	return r.stdoutSink
}

// StderrSink returns the stderr channel's sink (nil when stderr is not
// wrapped).
func (r *Redirector) StderrSink() sink.Sink {
	return r.stderrSink
}

// Sessions returns snapshots of all capture windows recorded so far, in
// start order.
func (r *Redirector) Sessions() []*session.Session {
	return r.registry.List()
}

// CurrentSession returns a snapshot of the active capture window, or nil.
func (r *Redirector) CurrentSession() *session.Session {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.cur == nil {
		return nil
	}
	cur, _ := r.registry.Get(r.cur.Id)
	return cur
}

// Default process-wide instance, for embedders that want global scoped
// capture (and for the autoinit import).
var defaultRedirector atomic.Pointer[Redirector]

// Init builds the process-wide default redirector. A nil config triggers
// discovery (CONREDIR_CONFIGJSON / CONREDIR_CONFIGFILE / conredir.json);
// when discovery finds nothing the built-in defaults are used. Returns
// (nil, nil) when CONREDIR_DISABLED is set.
func Init(cfgParam *config.Config) (*Redirector, error) {
	if os.Getenv(base.DisabledEnvName) != "" {
		return nil, nil
	}
	if r := defaultRedirector.Load(); r != nil {
		if global.AutoInit.Load() && cfgParam != nil {
			r.diag.Warn("Init called after autoinit import; config ignored, using existing default redirector")
		}
		return r, nil
	}
	cfg := cfgParam
	if cfg == nil {
		loaded, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defaultRedirector.Store(r)
	return r, nil
}

// Enable activates the default redirector.
func Enable() error {
	r := defaultRedirector.Load()
	if r == nil {
		return ErrNotInitialized
	}
	return r.Enable()
}

// Disable deactivates the default redirector.
func Disable() error {
	r := defaultRedirector.Load()
	if r == nil {
		return ErrNotInitialized
	}
	return r.Disable()
}

// Shutdown closes and clears the default redirector.
func Shutdown() error {
	r := defaultRedirector.Swap(nil)
	if r == nil {
		return nil
	}
	return r.Close()
}
