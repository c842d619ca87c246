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

// Package brain holds the merged, loaded form of one or more parsed
// ast.Roots: the topic graph, substitution tables, bot variables, and
// the object-macro handler registry. See spec.md §3-4.2.
package brain

import (
	"log"
	"sort"
	"sync"

	"github.com/rivescript-labs/rivescript/ast"
	"github.com/rivescript-labs/rivescript/interpreters"
)

// ThatsIndex maps topic -> current trigger pattern -> previous
// pattern -> the Trigger, per spec.md §3's "thats" definition.
type ThatsIndex map[string]map[string]map[string]*ast.Trigger

// Brain is the merged, ready-to-sort form of a RiveScript corpus.
//
// A Brain mutates only through Merge and the explicit setter methods
// below. Reply generation (package engine) mostly reads it, but the
// <bot name=value>, <env name=value> and {!...} tags write to it
// through SetVar, SetGlobal and Merge.
type Brain struct {
	mu sync.RWMutex

	Topics map[string]*ast.Topic

	Global map[string]string
	Var    map[string]string
	Sub    map[string]string
	Person map[string]string
	Array  map[string][]string

	Thats ThatsIndex

	// ObjectLanguages maps an object macro's name to the language it
	// was registered under.
	ObjectLanguages map[string]string

	// Handlers maps a language name to the MacroHandler responsible
	// for it.
	Handlers interpreters.Registry
}

// New makes an empty Brain with the default topic present and the
// given macro handler registry. A nil registry defaults to
// interpreters.Standard().
func New(handlers interpreters.Registry) *Brain {
	if handlers == nil {
		handlers = interpreters.Standard()
	}
	return &Brain{
		Topics:          map[string]*ast.Topic{ast.DefaultTopic: ast.NewTopic()},
		Global:          make(map[string]string),
		Var:             make(map[string]string),
		Sub:             make(map[string]string),
		Person:          make(map[string]string),
		Array:           make(map[string][]string),
		Thats:           make(ThatsIndex),
		ObjectLanguages: make(map[string]string),
		Handlers:        handlers,
	}
}

// topic returns the named topic, creating it if necessary. Caller
// must hold mu.
func (b *Brain) topic(name string) *ast.Topic {
	t, have := b.Topics[name]
	if !have {
		t = ast.NewTopic()
		b.Topics[name] = t
	}
	return t
}

// Merge ingests a parsed ast.Root into the brain (spec.md §4.2):
// global/var/sub/person/array declarations are added or overwrite
// existing values (an "<undef>" in the source does not delete a value
// the brain already holds), topics are upserted, triggers are deep-copied into the brain's
// topic, any trigger with Previous is also indexed under Thats, and
// object macros are handed to their language's handler.
func (b *Brain) Merge(root *ast.Root) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if root.Begin != nil {
		mergeMap(b.Global, root.Begin.Global)
		mergeMap(b.Var, root.Begin.Var)
		mergeMap(b.Sub, root.Begin.Sub)
		mergeMap(b.Person, root.Begin.Person)
		for name, items := range root.Begin.Array {
			b.Array[name] = append([]string(nil), items...)
		}
	}

	for name, t := range root.Topics {
		bt := b.topic(name)
		for k := range t.Includes {
			bt.Includes[k] = true
		}
		for k := range t.Inherits {
			bt.Inherits[k] = true
		}
		for _, tr := range t.Triggers {
			ctr := tr.Copy()
			bt.AddTrigger(ctr)
			if ctr.Previous != "" {
				b.indexThat(name, ctr)
			}
		}
	}

	for _, m := range root.Objects {
		b.loadObject(m)
	}

	return nil
}

// mergeMap applies add-or-delete semantics: values are copied in,
// except that the ast layer already translates "<undef>" into a
// deletion before this point, so here we only ever add/overwrite.
func mergeMap(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func (b *Brain) indexThat(topic string, tr *ast.Trigger) {
	byCurrent, have := b.Thats[topic]
	if !have {
		byCurrent = make(map[string]map[string]*ast.Trigger)
		b.Thats[topic] = byCurrent
	}
	byPrevious, have := byCurrent[tr.Pattern]
	if !have {
		byPrevious = make(map[string]*ast.Trigger)
		byCurrent[tr.Pattern] = byPrevious
	}
	byPrevious[tr.Previous] = tr
}

func (b *Brain) loadObject(m *ast.Macro) {
	handler, have := b.Handlers[m.Language]
	if !have {
		log.Printf("warning: no macro handler registered for language %q; object %q not indexed", m.Language, m.Name)
		return
	}
	ok, err := handler.Load(m.Name, m.Code)
	if err != nil {
		log.Printf("warning: loading object %q failed: %s", m.Name, err)
		return
	}
	if !ok {
		log.Printf("warning: handler for language %q declined object %q", m.Language, m.Name)
		return
	}
	b.ObjectLanguages[m.Name] = m.Language
}

// SetGlobal adds or overwrites (value == "" is NOT a delete; use
// DeleteGlobal) a global variable. These setters exist per spec.md §5
// as the explicit mutation API that must not be interleaved with a
// reply in progress.
func (b *Brain) SetGlobal(name, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Global[name] = value
}

// DeleteGlobal removes a global variable.
func (b *Brain) DeleteGlobal(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Global, name)
}

// SetVar adds or overwrites a bot variable.
func (b *Brain) SetVar(name, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Var[name] = value
}

// GetGlobal reads a global variable, returning "undefined" if unset,
// per the tag-expansion default in spec.md §4.4.
func (b *Brain) GetGlobal(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, have := b.Global[name]; have {
		return v
	}
	return "undefined"
}

// GetVar reads a bot variable, returning "undefined" if unset.
func (b *Brain) GetVar(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, have := b.Var[name]; have {
		return v
	}
	return "undefined"
}

// SetSubstitution adds or overwrites a `! sub` entry.
func (b *Brain) SetSubstitution(from, to string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sub[from] = to
}

// DeleteSubstitution removes a `! sub` entry.
func (b *Brain) DeleteSubstitution(from string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Sub, from)
}

// SetPerson adds or overwrites a `! person` entry.
func (b *Brain) SetPerson(from, to string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Person[from] = to
}

// DeletePerson removes a `! person` entry.
func (b *Brain) DeletePerson(from string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Person, from)
}

// SetArray adds or overwrites a `! array` entry.
func (b *Brain) SetArray(name string, items []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Array[name] = append([]string(nil), items...)
}

// DeleteArray removes a `! array` entry.
func (b *Brain) DeleteArray(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Array, name)
}

// TopicNames returns the names of every topic currently known.
func (b *Brain) TopicNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.Topics))
	for name := range b.Topics {
		names = append(names, name)
	}
	return names
}

// Topic returns a snapshot copy of the named topic, or nil.
func (b *Brain) Topic(name string) *ast.Topic {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, have := b.Topics[name]
	if !have {
		return nil
	}
	return t.Copy()
}

// TopicTriggers, TopicIncludes, and TopicInherits implement
// sorter.Topics so package sorter can walk the topic graph without
// importing package brain (which would cycle, since brain will come to
// depend on sorter's output via package rivescript instead).
func (b *Brain) TopicTriggers(name string) []*ast.Trigger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, have := b.Topics[name]
	if !have {
		return nil
	}
	return t.Triggers
}

func (b *Brain) TopicIncludes(name string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, have := b.Topics[name]
	if !have {
		return nil
	}
	names := make([]string, 0, len(t.Includes))
	for k := range t.Includes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (b *Brain) TopicInherits(name string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, have := b.Topics[name]
	if !have {
		return nil
	}
	names := make([]string, 0, len(t.Inherits))
	for k := range t.Inherits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// RLock/RUnlock expose the brain's read lock to packages (sorter,
// engine) that need a consistent multi-field read without copying the
// whole brain, mirroring crew.Crew's embedded sync.RWMutex.
func (b *Brain) RLock()   { b.mu.RLock() }
func (b *Brain) RUnlock() { b.mu.RUnlock() }
