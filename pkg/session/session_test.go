// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"testing"
)

func TestRegistryStartFinishList(t *testing.T) {
	r := MakeRegistry()

	s1 := r.Start("handle", []string{"stdout", "stderr"})
	s2 := r.Start("fd", []string{"stdout"})

	if s1.Id == "" || s2.Id == "" {
		t.Fatal("sessions missing ids")
	}
	if s1.Id == s2.Id {
		t.Fatal("session ids not unique")
	}
	if s1.Finished() {
		t.Error("session finished before Finish")
	}

	r.Finish(s1, map[string]int64{"stdout": 42, "stderr": 7})
	if !s1.Finished() {
		t.Error("session not finished after Finish")
	}
	if s1.Captured["stdout"] != 42 {
		t.Errorf("captured stdout = %d, want 42", s1.Captured["stdout"])
	}

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List() len = %d, want 2", len(list))
	}
	if list[0].Id != s1.Id || list[1].Id != s2.Id {
		t.Error("List() not in start order")
	}

	got, ok := r.Get(s2.Id)
	if !ok || got.Id != s2.Id {
		t.Error("Get() did not return the stored session")
	}
	if _, ok := r.Get("no-such-id"); ok {
		t.Error("Get() found a session for an unknown id")
	}
}

func TestRegistrySnapshots(t *testing.T) {
	r := MakeRegistry()
	s := r.Start("handle", []string{"stdout"})

	snap, ok := r.Get(s.Id)
	if !ok {
		t.Fatal("Get() missed a started session")
	}
	r.Finish(s, map[string]int64{"stdout": 9})
	if snap.Finished() {
		t.Error("snapshot taken before Finish should stay unfinished")
	}
	after, _ := r.Get(s.Id)
	if !after.Finished() || after.Captured["stdout"] != 9 {
		t.Errorf("snapshot after Finish = %+v", after)
	}
}

// Polling List while sessions finish must not race on the session fields.
func TestRegistryConcurrentListAndFinish(t *testing.T) {
	r := MakeRegistry()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			for _, s := range r.List() {
				_ = s.Finished()
			}
		}
	}()
	for i := 0; i < 200; i++ {
		s := r.Start("handle", []string{"stdout"})
		r.Finish(s, map[string]int64{"stdout": int64(i)})
	}
	<-done
}
