package model

import (
	"sync"
	"sync/atomic"
)

// DownloadPhase is the state of the model-archive download.
type DownloadPhase int32

const (
	DownloadIdle DownloadPhase = iota
	DownloadRunning
	DownloadDone
	DownloadFailed
)

func (p DownloadPhase) String() string {
	switch p {
	case DownloadIdle:
		return "idle"
	case DownloadRunning:
		return "running"
	case DownloadDone:
		return "done"
	case DownloadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DownloadModel holds download progress written by the fetch goroutine and
// read by the UI tick.
type DownloadModel struct {
	phase atomic.Int32
	done  atomic.Int64
	total atomic.Int64

	mu  sync.Mutex
	err error
}

func NewDownloadModel() *DownloadModel { return &DownloadModel{} }

// Begin moves to DownloadRunning and resets progress. It returns false if a
// download is already running.
func (m *DownloadModel) Begin() bool {
	for {
		cur := m.phase.Load()
		if DownloadPhase(cur) == DownloadRunning {
			return false
		}
		if m.phase.CompareAndSwap(cur, int32(DownloadRunning)) {
			break
		}
	}
	m.done.Store(0)
	m.total.Store(-1)
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
	return true
}

func (m *DownloadModel) SetProgress(done, total int64) {
	m.done.Store(done)
	m.total.Store(total)
}

func (m *DownloadModel) Progress() (done, total int64) {
	return m.done.Load(), m.total.Load()
}

// Finish records the outcome.
func (m *DownloadModel) Finish(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	if err != nil {
		m.phase.Store(int32(DownloadFailed))
		return
	}
	m.phase.Store(int32(DownloadDone))
}

func (m *DownloadModel) Phase() DownloadPhase { return DownloadPhase(m.phase.Load()) }

func (m *DownloadModel) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}
