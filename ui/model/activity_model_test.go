package model

import (
	"testing"
	"time"
)

func TestActivityModel_Lifecycle(t *testing.T) {
	m := NewActivityModel()
	base := time.Unix(0, 0)

	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	cur, total := m.Values()
	if cur != 5*time.Second || total != 5*time.Second {
		t.Fatalf("running: current=%v total=%v, want 5s/5s", cur, total)
	}

	m.OnTick(false, base.Add(5*time.Second))
	m.OnTick(false, base.Add(7*time.Second))
	cur, total = m.Values()
	if cur != 5*time.Second || total != 5*time.Second {
		t.Fatalf("idle ticks changed durations: current=%v total=%v", cur, total)
	}

	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(13*time.Second))
	cur, total = m.Values()
	if cur != 3*time.Second || total != 8*time.Second {
		t.Fatalf("second activation: current=%v total=%v, want 3s/8s", cur, total)
	}

	m.OnTick(false, base.Add(13*time.Second))
	cur, total = m.Values()
	if cur != 3*time.Second || total != 8*time.Second {
		t.Fatalf("final: current=%v total=%v", cur, total)
	}
}

func TestActivityModel_NilSafe(t *testing.T) {
	var m *ActivityModel
	m.OnTick(true, time.Now())
	if c, tot := m.Values(); c != 0 || tot != 0 {
		t.Fatalf("nil model values = %v/%v", c, tot)
	}
}

func TestOverlayModel(t *testing.T) {
	var m OverlayModel
	if m.Enabled() {
		t.Fatalf("zero model enabled")
	}
	m.SetEnabled(true)
	if !m.Enabled() {
		t.Fatalf("not enabled")
	}
	var nilModel *OverlayModel
	nilModel.SetEnabled(true)
	if nilModel.Enabled() {
		t.Fatalf("nil model enabled")
	}
}

func TestDownloadModel(t *testing.T) {
	m := NewDownloadModel()
	if m.Phase() != DownloadIdle {
		t.Fatalf("phase = %v", m.Phase())
	}
	if !m.Begin() {
		t.Fatalf("Begin from idle refused")
	}
	if m.Begin() {
		t.Fatalf("second Begin accepted while running")
	}
	m.SetProgress(10, 100)
	if d, tot := m.Progress(); d != 10 || tot != 100 {
		t.Fatalf("progress = %d/%d", d, tot)
	}
	m.Finish(nil)
	if m.Phase() != DownloadDone || m.Err() != nil {
		t.Fatalf("phase=%v err=%v", m.Phase(), m.Err())
	}
	if !m.Begin() {
		t.Fatalf("Begin after finish refused")
	}
	if d, _ := m.Progress(); d != 0 {
		t.Fatalf("progress not reset")
	}
}
