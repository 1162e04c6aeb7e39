package service

import (
	"sync/atomic"
	"time"
)

// State tracks process liveness facts the admin endpoints report: readiness,
// websocket connectivity and the times of the last evaluation tick and last
// emitted signal.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected    atomic.Bool
	lastTickUnix   atomic.Int64
	lastSignalUnix atomic.Int64
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time)   { s.lastTickUnix.Store(t.Unix()) }
func (s *State) TouchSignal(t time.Time) { s.lastSignalUnix.Store(t.Unix()) }

func (s *State) LastTick() time.Time   { return unixOrZero(s.lastTickUnix.Load()) }
func (s *State) LastSignal() time.Time { return unixOrZero(s.lastSignalUnix.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func unixOrZero(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
