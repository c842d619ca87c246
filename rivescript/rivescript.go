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

// Package rivescript is the top-level composition root: one RiveScript
// value wires together a brain, its sort buffer, a session manager,
// and the reply engine behind the small surface described in spec.md
// §6.
package rivescript

import (
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rivescript-labs/rivescript/brain"
	"github.com/rivescript-labs/rivescript/engine"
	"github.com/rivescript-labs/rivescript/interpreters"
	"github.com/rivescript-labs/rivescript/match"
	"github.com/rivescript-labs/rivescript/parser"
	"github.com/rivescript-labs/rivescript/session"
	"github.com/rivescript-labs/rivescript/sorter"
	"github.com/rivescript-labs/rivescript/util"
)

// RiveScript is one loaded, sortable, reply-capable bot.
//
// Loading (Stream/LoadFile/LoadDirectory) and sorting (SortReplies)
// mutate the brain and the sort buffer; they must not race with Reply
// calls in flight, per spec.md §5. Reply writes the session store,
// which is safe for concurrent use across distinct users, and the
// <bot>, <env> and {!...} tags also write the brain through its
// locked setters and Merge.
type RiveScript struct {
	mu sync.RWMutex

	cfg *Config

	brain *brain.Brain
	buf   *sorter.Buffer

	sessions session.Manager
}

// New makes a RiveScript with a fresh in-memory session manager and
// the standard object-macro handler registry. A nil cfg defaults to
// NewConfig().
func New(cfg *Config) *RiveScript {
	if cfg == nil {
		cfg = NewConfig()
	}
	rs := &RiveScript{
		cfg:      cfg,
		brain:    brain.New(interpreters.Standard()),
		sessions: session.NewMemoryManager(),
	}
	rs.buf = sorter.Build(rs.brain, rs.brain.TopicNames(), nil, nil, cfg.Depth)
	return rs
}

// NewWithSessions is New, but lets the caller supply a session
// manager — e.g. a *session.BoltManager for on-disk persistence —
// instead of the default in-memory one.
func NewWithSessions(cfg *Config, sessions session.Manager) *RiveScript {
	rs := New(cfg)
	rs.sessions = sessions
	return rs
}

// SetHandler registers a MacroHandler for language, overriding
// whatever Standard() registered for it (if anything).
func (rs *RiveScript) SetHandler(language string, handler interpreters.MacroHandler) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.brain.Handlers[language] = handler
}

// Stream parses src under name and merges the result into the brain.
// In strict mode a structural error aborts with no effect; in
// non-strict mode offending lines are skipped and the returned
// warnings describe them.
func (rs *RiveScript) Stream(name, src string) ([]error, error) {
	lines := strings.Split(src, "\n")
	root, warnings, err := parser.Parse(name, lines, &parser.Config{
		Strict:    rs.cfg.Strict,
		ForceCase: rs.cfg.ForceCase,
	})
	if err != nil {
		return warnings, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err := rs.brain.Merge(root); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// LoadFile reads and streams one RiveScript source file.
func (rs *RiveScript) LoadFile(path string) ([]error, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rs.Stream(path, string(data))
}

// LoadDirectory streams every *.rive file in dir, in deterministic
// (sorted) filename order, matching how a corpus is expected to merge
// regardless of directory-listing order.
func (rs *RiveScript) LoadDirectory(dir string) ([]error, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.rive"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var allWarnings []error
	for _, path := range matches {
		warnings, err := rs.LoadFile(path)
		allWarnings = append(allWarnings, warnings...)
		if err != nil {
			return allWarnings, err
		}
	}
	return allWarnings, nil
}

// SortReplies rebuilds the sort buffer from the current brain state
// (spec.md §4.3). Must be called at least once after loading, and
// again after any later load or substitution/person change, before
// Reply will see the new triggers or substitutions. Globals, bot
// variables and arrays are read from the brain at reply time.
func (rs *RiveScript) SortReplies() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.buf = sorter.Build(rs.brain, rs.brain.TopicNames(), rs.brain.Sub, rs.brain.Person, rs.cfg.Depth)
}

// Reply runs the full matcher/reply pipeline (spec.md §4.5) for one
// user/message pair.
func (rs *RiveScript) Reply(userID, message string) (string, error) {
	rs.mu.RLock()
	brn, buf := rs.brain, rs.buf
	rs.mu.RUnlock()

	return engine.Reply(brn, buf, rs.sessions, rs.engineConfig(), userID, message)
}

func (rs *RiveScript) engineConfig() engine.Config {
	return engine.Config{
		Depth:         rs.cfg.Depth,
		UTF8:          rs.cfg.UTF8,
		ForceCase:     rs.cfg.ForceCase,
		UnicodePunct:  rs.cfg.unicodePunctRegexp(),
		ErrorMessages: rs.cfg.ErrorMessages,
	}
}

// SetGlobal adds or overwrites a `! global` variable.
func (rs *RiveScript) SetGlobal(name, value string) { rs.brain.SetGlobal(name, value) }

// DeleteGlobal removes a `! global` variable.
func (rs *RiveScript) DeleteGlobal(name string) { rs.brain.DeleteGlobal(name) }

// GetGlobal reads a `! global` variable ("undefined" if unset).
func (rs *RiveScript) GetGlobal(name string) string { return rs.brain.GetGlobal(name) }

// SetVariable adds or overwrites a `! var` (bot) variable.
func (rs *RiveScript) SetVariable(name, value string) { rs.brain.SetVar(name, value) }

// GetVariable reads a `! var` (bot) variable ("undefined" if unset).
func (rs *RiveScript) GetVariable(name string) string { return rs.brain.GetVar(name) }

// SetSubstitution adds or overwrites a `! sub` entry.
func (rs *RiveScript) SetSubstitution(from, to string) { rs.brain.SetSubstitution(from, to) }

// DeleteSubstitution removes a `! sub` entry.
func (rs *RiveScript) DeleteSubstitution(from string) { rs.brain.DeleteSubstitution(from) }

// SetPersonSubstitution adds or overwrites a `! person` entry.
func (rs *RiveScript) SetPersonSubstitution(from, to string) { rs.brain.SetPerson(from, to) }

// DeletePersonSubstitution removes a `! person` entry.
func (rs *RiveScript) DeletePersonSubstitution(from string) { rs.brain.DeletePerson(from) }

// SetArray adds or overwrites a `! array` entry.
func (rs *RiveScript) SetArray(name string, items []string) { rs.brain.SetArray(name, items) }

// DeleteArray removes a `! array` entry.
func (rs *RiveScript) DeleteArray(name string) { rs.brain.DeleteArray(name) }

// SetUservar sets one session variable for user.
func (rs *RiveScript) SetUservar(user, name, value string) {
	rs.sessions.Set(user, map[string]string{name: value})
}

// SetUservars merges several session variables for user at once.
func (rs *RiveScript) SetUservars(user string, vars map[string]string) {
	rs.sessions.Set(user, vars)
}

// GetUservar reads one session variable for user.
func (rs *RiveScript) GetUservar(user, name string) (string, bool) {
	return rs.sessions.Get(user, name)
}

// GetUservars returns a copy of every session variable for user.
func (rs *RiveScript) GetUservars(user string) map[string]string {
	return rs.sessions.GetAny(user)
}

// GetAllUservars returns a copy of every user's session variables,
// keyed by user id.
func (rs *RiveScript) GetAllUservars() map[string]map[string]string {
	return rs.sessions.GetAll()
}

// ClearUservars deletes user's session entirely.
func (rs *RiveScript) ClearUservars(user string) { rs.sessions.Clear(user) }

// ClearAllUservars deletes every session.
func (rs *RiveScript) ClearAllUservars() { rs.sessions.ClearAll() }

// FreezeUservars snapshots user's session for a later Thaw.
func (rs *RiveScript) FreezeUservars(user string) { rs.sessions.Freeze(user) }

// ThawUservars restores user's session from its snapshot per action.
func (rs *RiveScript) ThawUservars(user string, action session.ThawAction) {
	rs.sessions.Thaw(user, action)
}

// CurrentTopic returns user's current topic ("random" if never set).
func (rs *RiveScript) CurrentTopic(user string) string {
	topic, have := rs.sessions.Get(user, "topic")
	if !have || topic == "" {
		return "random"
	}
	return topic
}

// LastMatch returns the pattern user's most recent message matched,
// or "" if the last reply call found nothing.
func (rs *RiveScript) LastMatch(user string) string {
	return rs.sessions.GetLastMatch(user)
}

// Normalize runs the same message normalization Reply uses
// internally (spec.md §4.4), exposed so callers can pre-check a
// message against a pattern without a full reply round-trip.
func (rs *RiveScript) Normalize(s string) string {
	opts := match.Options{UTF8: rs.cfg.UTF8, UnicodePunct: rs.cfg.unicodePunctRegexp()}
	rs.mu.RLock()
	keys := rs.buf.Sub
	rs.mu.RUnlock()
	rs.brain.RLock()
	subs := make([]match.Substitution, 0, len(keys))
	for _, k := range keys {
		subs = append(subs, match.Substitution{From: k, To: rs.brain.Sub[k]})
	}
	rs.brain.RUnlock()
	return match.Normalize(s, subs, opts)
}

// Sessions returns the session manager backing this bot, so a caller
// can do manager-specific things (e.g. close a *session.BoltManager
// on shutdown) without RiveScript needing to know about them.
func (rs *RiveScript) Sessions() session.Manager { return rs.sessions }

func (rs *RiveScript) logf(format string, args ...interface{}) {
	util.Logf("rivescript: "+format, args...)
}
