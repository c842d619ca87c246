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

// Package session holds per-user mutable state (spec.md §3): session
// variables including "topic", the last matched trigger pattern, and
// the bounded input/reply history, plus the freeze/thaw snapshot
// mechanism (§6) managers build on.
package session

// HistorySize is the fixed ring length for both the input and reply
// histories.
const HistorySize = 9

// History is a fixed-size ring of the most recent strings, oldest
// overwritten first. Slot 0 is always the most recent.
type History struct {
	slots [HistorySize]string
}

// NewHistory makes a History pre-filled with "undefined" in every
// slot, per spec.md §3.
func NewHistory() *History {
	h := &History{}
	for i := range h.slots {
		h.slots[i] = "undefined"
	}
	return h
}

// Push inserts s as the newest entry, shifting everything else back
// one slot; the oldest entry falls off the end.
func (h *History) Push(s string) {
	for i := HistorySize - 1; i > 0; i-- {
		h.slots[i] = h.slots[i-1]
	}
	h.slots[0] = s
}

// Get returns history slot n, 1-based (1 = most recent), clamped to
// "undefined" outside 1..HistorySize.
func (h *History) Get(n int) string {
	if n < 1 || n > HistorySize {
		return "undefined"
	}
	return h.slots[n-1]
}

// Copy returns an independent copy of h.
func (h *History) Copy() *History {
	c := &History{}
	c.slots = h.slots
	return c
}

// Session is one user's mutable state.
type Session struct {
	Variables map[string]string
	LastMatch string
	Input     *History
	Reply     *History
}

// New makes a Session with topic defaulted to "random" and both
// histories pre-filled with "undefined".
func New() *Session {
	return &Session{
		Variables: map[string]string{"topic": "random"},
		Input:     NewHistory(),
		Reply:     NewHistory(),
	}
}

// Copy returns a deep, independent copy of s, the form both a frozen
// snapshot and a THAW/KEEP restore hand back.
func (s *Session) Copy() *Session {
	vars := make(map[string]string, len(s.Variables))
	for k, v := range s.Variables {
		vars[k] = v
	}
	return &Session{
		Variables: vars,
		LastMatch: s.LastMatch,
		Input:     s.Input.Copy(),
		Reply:     s.Reply.Copy(),
	}
}

// ThawAction selects how Thaw disposes of a frozen snapshot once
// applied, per spec.md §6.
type ThawAction int

const (
	// Thaw restores the snapshot and discards it afterward.
	Thaw ThawAction = iota
	// Discard removes the snapshot without restoring it.
	Discard
	// Keep restores the snapshot and leaves it in place for reuse.
	Keep
)
