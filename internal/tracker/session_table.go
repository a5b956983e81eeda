// Package tracker owns the in-memory table of open activity sessions, one
// per device, and the ACTIVE/IDLE/LOCKED accounting state machine.
package tracker

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

// IdleState is the accounting state of an open session.
type IdleState string

const (
	IdleActive IdleState = "ACTIVE"
	IdleIdle   IdleState = "IDLE"
	IdleLocked IdleState = "LOCKED"
)

// ParseIdleState normalizes a wire value; empty defaults to ACTIVE per the
// ingestion contract. The ok result is false for garbage input.
func ParseIdleState(s string) (IdleState, bool) {
	switch IdleState(s) {
	case "":
		return IdleActive, true
	case IdleActive, IdleIdle, IdleLocked:
		return IdleState(s), true
	default:
		return IdleActive, false
	}
}

// Session is one open period of device attention on a single site/app.
// AccumulatedMs holds time banked before the most recent idle/lock
// transition; the live timer only runs while IdleState is ACTIVE.
type Session struct {
	DeviceID      string
	UserID        uuid.UUID
	Site          string
	StartedAtMs   int64
	IdleState     IdleState
	AccumulatedMs int64
}

// EffectiveDurationMs is the session's total attention time as of nowMs.
func (s *Session) EffectiveDurationMs(nowMs int64) int64 {
	d := s.AccumulatedMs
	if s.IdleState == IdleActive {
		d += nowMs - s.StartedAtMs
	}
	return d
}

const shardCount = 32

type shard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// Table maps device IDs to their single open session. Mutations for the same
// device serialize on the device's shard; devices on different shards never
// contend.
type Table struct {
	shards [shardCount]shard
}

func NewTable() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].sessions = make(map[string]*Session)
	}
	return t
}

func (t *Table) shardFor(deviceID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return &t.shards[h.Sum32()%shardCount]
}

// applyIdle runs one idle-state transition at atMs on a held session:
//
//	ACTIVE -> IDLE/LOCKED   bank the running interval, freeze the timer
//	IDLE/LOCKED -> ACTIVE   restart the timer at atMs
//	IDLE <-> LOCKED         update the state field only, nothing banked
//
// Caller holds the shard lock. Reports whether the state changed.
func applyIdle(s *Session, state IdleState, atMs int64) bool {
	if s.IdleState == state {
		return false
	}
	switch {
	case s.IdleState == IdleActive:
		s.AccumulatedMs += atMs - s.StartedAtMs
	case state == IdleActive:
		s.StartedAtMs = atMs
	}
	s.IdleState = state
	return true
}

// Open starts a new ACTIVE session for the device. The event's idle signal
// is applied to the prior session, under the same lock hold, before that
// session is returned (a copy, frozen at atMs) for the caller to finalize as
// an implicit close.
func (t *Table) Open(deviceID string, userID uuid.UUID, site string, idle IdleState, atMs int64) (closed *Session) {
	sh := t.shardFor(deviceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if prev, ok := sh.sessions[deviceID]; ok {
		applyIdle(prev, idle, atMs)
		c := *prev
		closed = &c
	}
	sh.sessions[deviceID] = &Session{
		DeviceID:    deviceID,
		UserID:      userID,
		Site:        site,
		StartedAtMs: atMs,
		IdleState:   IdleActive,
	}
	return closed
}

// Close applies the event's idle signal, then removes the device's session
// and returns a copy for finalization, all under one lock hold. Closing with
// no open session is a no-op and returns nil.
func (t *Table) Close(deviceID string, idle IdleState, atMs int64) (closed *Session) {
	sh := t.shardFor(deviceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	prev, ok := sh.sessions[deviceID]
	if !ok {
		return nil
	}
	applyIdle(prev, idle, atMs)
	delete(sh.sessions, deviceID)
	c := *prev
	return &c
}

// ApplyIdle runs a standalone idle-state transition, for events that carry
// no site. It reports whether a session existed and its state changed.
func (t *Table) ApplyIdle(deviceID string, state IdleState, atMs int64) bool {
	sh := t.shardFor(deviceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[deviceID]
	if !ok {
		return false
	}
	return applyIdle(s, state, atMs)
}

// Get returns a copy of the device's open session, or nil.
func (t *Table) Get(deviceID string) *Session {
	sh := t.shardFor(deviceID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[deviceID]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

// Snapshot copies every open session across all shards, for live stats.
func (t *Table) Snapshot() []Session {
	var out []Session
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		for _, s := range sh.sessions {
			out = append(out, *s)
		}
		sh.mu.Unlock()
	}
	return out
}
