/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package session

import "sync"

// Manager is the session manager contract of spec.md §6. Every method
// is safe to call concurrently across distinct users; a single user's
// session must not be touched by two calls in flight at once (the
// caller, package engine, upholds that by constraint, not this type).
type Manager interface {
	Init(user string)
	Set(user string, vars map[string]string)
	Get(user, name string) (string, bool)
	GetAny(user string) map[string]string
	GetAll() map[string]map[string]string
	AddHistory(user, input, reply string)
	SetLastMatch(user, trigger string)
	GetLastMatch(user string) string
	GetHistory(user string) (input, reply *History)
	Clear(user string)
	ClearAll()
	Freeze(user string)
	Thaw(user string, action ThawAction)
}

// MemoryManager is an in-process Manager, one *Session per user
// behind a single mutex, mirroring crew.Crew's
// sync.RWMutex-guarded map[string]*Machine.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	frozen   map[string]*Session
}

// NewMemoryManager makes an empty MemoryManager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		sessions: make(map[string]*Session),
		frozen:   make(map[string]*Session),
	}
}

func (m *MemoryManager) session(user string) *Session {
	s, have := m.sessions[user]
	if !have {
		s = New()
		m.sessions[user] = s
	}
	return s
}

// Init ensures user has a session, creating a fresh one if absent.
func (m *MemoryManager) Init(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(user)
}

// Set merges vars into user's session variables.
func (m *MemoryManager) Set(user string, vars map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(user)
	for k, v := range vars {
		s.Variables[k] = v
	}
}

// Get reads one session variable; ok is false if it was never set.
func (m *MemoryManager) Get(user, name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, have := m.sessions[user]
	if !have {
		return "", false
	}
	v, have := s.Variables[name]
	return v, have
}

// GetAny returns a copy of every session variable for user.
func (m *MemoryManager) GetAny(user string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, have := m.sessions[user]
	if !have {
		return map[string]string{}
	}
	out := make(map[string]string, len(s.Variables))
	for k, v := range s.Variables {
		out[k] = v
	}
	return out
}

// GetAll returns a copy of every user's variables, keyed by user id.
func (m *MemoryManager) GetAll() map[string]map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]string, len(m.sessions))
	for user, s := range m.sessions {
		vars := make(map[string]string, len(s.Variables))
		for k, v := range s.Variables {
			vars[k] = v
		}
		out[user] = vars
	}
	return out
}

// AddHistory pushes input and reply onto user's history rings.
func (m *MemoryManager) AddHistory(user, input, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(user)
	s.Input.Push(input)
	s.Reply.Push(reply)
}

// SetLastMatch records the pattern of the most recently matched
// trigger for user (empty string if nothing matched).
func (m *MemoryManager) SetLastMatch(user, trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(user).LastMatch = trigger
}

// GetLastMatch returns user's last matched trigger pattern.
func (m *MemoryManager) GetLastMatch(user string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, have := m.sessions[user]
	if !have {
		return ""
	}
	return s.LastMatch
}

// GetHistory returns user's input and reply history rings.
func (m *MemoryManager) GetHistory(user string) (input, reply *History) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, have := m.sessions[user]
	if !have {
		return NewHistory(), NewHistory()
	}
	return s.Input, s.Reply
}

// Clear resets user's session to a fresh one, dropping any frozen
// snapshot too.
func (m *MemoryManager) Clear(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, user)
	delete(m.frozen, user)
}

// ClearAll resets every session and every frozen snapshot.
func (m *MemoryManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Session)
	m.frozen = make(map[string]*Session)
}

// Freeze snapshots user's current session, overwriting any existing
// snapshot, per spec.md §6.
func (m *MemoryManager) Freeze(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frozen[user] = m.session(user).Copy()
}

// Thaw applies a frozen snapshot for user according to action. A
// missing snapshot is a no-op.
func (m *MemoryManager) Thaw(user string, action ThawAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, have := m.frozen[user]
	if !have {
		return
	}
	switch action {
	case Thaw:
		m.sessions[user] = snap.Copy()
		delete(m.frozen, user)
	case Discard:
		delete(m.frozen, user)
	case Keep:
		m.sessions[user] = snap.Copy()
	}
}
