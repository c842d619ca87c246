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

// Package ast holds the passive data produced by parsing a RiveScript
// source file: topics, triggers, the begin block, and object macros.
//
// This package has no behavior beyond structural copying; parsing
// lives in package parser, and merging an ast.Root into a usable
// brain lives in package brain.
package ast

// BeginTopic is the reserved name of the topic that holds the "begin
// block": `> begin ... < begin`.
const BeginTopic = "__begin__"

// DefaultTopic is the name every session starts in, and the topic
// that always exists even when a script never declares it.
const DefaultTopic = "random"

// Trigger is a single `+` pattern and everything look-ahead attached
// to it: replies, conditions, an optional redirect, and an optional
// %Previous binding.
type Trigger struct {
	// Pattern is the trigger text, e.g. "hello *". Never empty.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Replies is the set of `-` lines under this trigger.
	Replies []string `json:"replies,omitempty" yaml:"replies,omitempty"`

	// Conditions is the set of `*` lines under this trigger.
	Conditions []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Redirect, if set, is the `@` line's target.
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`

	// Previous, if set, is the `%` line's pattern, and this trigger
	// is also indexed under Brain.Thats.
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`

	// File and Line locate this trigger in its source for
	// diagnostics; not part of RiveScript semantics.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Copy makes a deep copy of the Trigger.
func (t *Trigger) Copy() *Trigger {
	if t == nil {
		return nil
	}
	replies := make([]string, len(t.Replies))
	copy(replies, t.Replies)
	conditions := make([]string, len(t.Conditions))
	copy(conditions, t.Conditions)
	return &Trigger{
		Pattern:    t.Pattern,
		Replies:    replies,
		Conditions: conditions,
		Redirect:   t.Redirect,
		Previous:   t.Previous,
		File:       t.File,
		Line:       t.Line,
	}
}

// HasOutput reports whether this trigger produces any output at all:
// a reply, a redirect, or a condition. A trigger with none of these is
// a strict-mode parse error (spec.md §9, Open Question).
func (t *Trigger) HasOutput() bool {
	return 0 < len(t.Replies) || t.Redirect != "" || 0 < len(t.Conditions)
}

// Topic is a named collection of triggers plus the other topics it
// pulls triggers from.
type Topic struct {
	Triggers []*Trigger `json:"triggers,omitempty" yaml:"triggers,omitempty"`

	// Includes is the set of topic names this topic includes.
	// Included triggers have the same priority as this topic's own.
	Includes map[string]bool `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Inherits is the set of topic names this topic inherits from.
	// Inherited triggers sort at strictly lower priority.
	Inherits map[string]bool `json:"inherits,omitempty" yaml:"inherits,omitempty"`
}

// NewTopic makes an empty Topic ready for triggers.
func NewTopic() *Topic {
	return &Topic{
		Includes: make(map[string]bool),
		Inherits: make(map[string]bool),
	}
}

// Copy makes a deep copy of the Topic.
func (t *Topic) Copy() *Topic {
	if t == nil {
		return nil
	}
	triggers := make([]*Trigger, len(t.Triggers))
	for i, tr := range t.Triggers {
		triggers[i] = tr.Copy()
	}
	includes := make(map[string]bool, len(t.Includes))
	for k, v := range t.Includes {
		includes[k] = v
	}
	inherits := make(map[string]bool, len(t.Inherits))
	for k, v := range t.Inherits {
		inherits[k] = v
	}
	return &Topic{
		Triggers: triggers,
		Includes: includes,
		Inherits: inherits,
	}
}

// AddTrigger appends a trigger to the topic.
func (t *Topic) AddTrigger(tr *Trigger) {
	t.Triggers = append(t.Triggers, tr)
}

// Macro is one `> object NAME LANGUAGE ... < object` block.
type Macro struct {
	Name     string   `json:"name" yaml:"name"`
	Language string   `json:"language" yaml:"language"`
	Code     []string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Copy makes a deep copy of the Macro.
func (m *Macro) Copy() *Macro {
	if m == nil {
		return nil
	}
	code := make([]string, len(m.Code))
	copy(code, m.Code)
	return &Macro{
		Name:     m.Name,
		Language: m.Language,
		Code:     code,
	}
}

// Begin holds the declarations made inside `> begin ... < begin`:
// globals, bot variables, substitutions, person substitutions, and
// arrays. The maps hold only live values: a "<undef>" declaration
// removes the name from these maps during the parse and is not kept
// here, so merging a Begin into a Brain never deletes a value the
// Brain already holds; see package brain.
type Begin struct {
	Global map[string]string   `json:"global,omitempty" yaml:"global,omitempty"`
	Var    map[string]string   `json:"var,omitempty" yaml:"var,omitempty"`
	Sub    map[string]string   `json:"sub,omitempty" yaml:"sub,omitempty"`
	Person map[string]string   `json:"person,omitempty" yaml:"person,omitempty"`
	Array  map[string][]string `json:"array,omitempty" yaml:"array,omitempty"`
}

// NewBegin makes an empty Begin ready for declarations.
func NewBegin() *Begin {
	return &Begin{
		Global: make(map[string]string),
		Var:    make(map[string]string),
		Sub:    make(map[string]string),
		Person: make(map[string]string),
		Array:  make(map[string][]string),
	}
}

// Copy makes a deep copy of the Begin.
func (b *Begin) Copy() *Begin {
	if b == nil {
		return nil
	}
	nb := NewBegin()
	for k, v := range b.Global {
		nb.Global[k] = v
	}
	for k, v := range b.Var {
		nb.Var[k] = v
	}
	for k, v := range b.Sub {
		nb.Sub[k] = v
	}
	for k, v := range b.Person {
		nb.Person[k] = v
	}
	for k, vs := range b.Array {
		cp := make([]string, len(vs))
		copy(cp, vs)
		nb.Array[k] = cp
	}
	return nb
}

// Root is the abstract syntax tree produced by parsing one RiveScript
// source file or, after concatenation, a whole loaded corpus before
// it's merged into a Brain.
type Root struct {
	Begin   *Begin           `json:"begin,omitempty" yaml:"begin,omitempty"`
	Topics  map[string]*Topic `json:"topics,omitempty" yaml:"topics,omitempty"`
	Objects []*Macro         `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// NewRoot makes an empty Root with the default topic already present,
// matching spec.md §3's "a default topic random always exists".
func NewRoot() *Root {
	return &Root{
		Begin:  NewBegin(),
		Topics: map[string]*Topic{DefaultTopic: NewTopic()},
	}
}

// Topic returns the named topic, creating it (and registering it)
// if it doesn't exist yet.
func (r *Root) Topic(name string) *Topic {
	t, have := r.Topics[name]
	if !have {
		t = NewTopic()
		r.Topics[name] = t
	}
	return t
}

// Copy makes a deep copy of the Root.
func (r *Root) Copy() *Root {
	if r == nil {
		return nil
	}
	topics := make(map[string]*Topic, len(r.Topics))
	for name, t := range r.Topics {
		topics[name] = t.Copy()
	}
	objects := make([]*Macro, len(r.Objects))
	for i, o := range r.Objects {
		objects[i] = o.Copy()
	}
	return &Root{
		Begin:   r.Begin.Copy(),
		Topics:  topics,
		Objects: objects,
	}
}
