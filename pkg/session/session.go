// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session records capture windows for post-hoc inspection.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/conredirdev/conredir/pkg/utilds"
)

// Session describes one enable..disable capture window.
type Session struct {
	Id      string   `json:"id"`
	Seq     int64    `json:"seq"`
	StartTs int64    `json:"startts"`
	EndTs   int64    `json:"endts,omitempty"`
	Mode    string   `json:"mode"`
	Streams []string `json:"streams"`
	// Captured holds bytes captured per stream, filled at finish.
	Captured map[string]int64 `json:"captured,omitempty"`
}

func (s *Session) Finished() bool {
	return s.EndTs != 0
}

// Registry stores the capture sessions of one redirector. Start hands back
// the live record (owned by the registry and mutated by Finish); Get and
// List return snapshot copies safe to read while a session is finishing.
type Registry struct {
	// lock guards the mutable fields of stored sessions
	lock     sync.Mutex
	nextSeq  atomic.Int64
	sessions *utilds.SyncMap[string, *Session]
}

func MakeRegistry() *Registry {
	return &Registry{
		sessions: utilds.MakeSyncMap[string, *Session](),
	}
}

// Start records a new active session.
func (r *Registry) Start(mode string, streams []string) *Session {
	s := &Session{
		Id:      uuid.New().String(),
		Seq:     r.nextSeq.Add(1),
		StartTs: time.Now().UnixMilli(),
		Mode:    mode,
		Streams: streams,
	}
	r.sessions.Set(s.Id, s)
	return s
}

// Finish marks a session complete and records per-stream capture counts.
func (r *Registry) Finish(s *Session, captured map[string]int64) {
	r.lock.Lock()
	s.EndTs = time.Now().UnixMilli()
	s.Captured = captured
	r.lock.Unlock()
	r.sessions.Set(s.Id, s)
}

// Get returns a snapshot of a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions.GetEx(id)
	if !ok {
		return nil, false
	}
	r.lock.Lock()
	cp := *s
	r.lock.Unlock()
	return &cp, true
}

// List returns snapshots of all sessions in start order.
func (r *Registry) List() []*Session {
	var live []*Session
	r.sessions.ForEach(func(_ string, s *Session) {
		live = append(live, s)
	})
	rtn := make([]*Session, 0, len(live))
	r.lock.Lock()
	for _, s := range live {
		cp := *s
		rtn = append(rtn, &cp)
	}
	r.lock.Unlock()
	slices.SortFunc(rtn, func(a, b *Session) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return rtn
}
