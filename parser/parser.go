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

// Package parser turns RiveScript source text into an ast.Root.
//
// The parser is a line-oriented state machine: it never looks more
// than one line ahead except implicitly, by remembering what the
// previous command was so that a `%` or `^` line knows what it
// attaches to. See spec.md §4.1 for the full grammar this package
// implements.
package parser

import (
	"log"
	"strconv"
	"strings"

	"github.com/rivescript-labs/rivescript/ast"
)

// MaxVersion is the highest `! version` a source file may declare.
// A file declaring a higher version fails to parse regardless of
// strict mode (spec.md §4.1 "Version gate").
const MaxVersion = 2.0

// Config controls parser behavior. The zero value has strict mode
// and force-case both off; DefaultConfig turns strict mode on.
type Config struct {
	// Strict, when true, makes structural/syntactic violations abort
	// the parse with a *ParseError. When false, the offending line is
	// skipped and a warning is logged.
	Strict bool

	// ForceCase lowers trigger patterns after parsing, before they're
	// emitted in the ast.Root.
	ForceCase bool
}

// DefaultConfig is strict, without force-case, matching spec.md §6.
func DefaultConfig() *Config {
	return &Config{Strict: true}
}

// concat modes, selected via `! local concat = ...`.
const (
	concatNone    = "none"
	concatSpace   = "space"
	concatNewline = "newline"
)

// crlf is the literal continuation delimiter used for `!` definitions
// (spec.md §4.1).
const crlf = "<crlf>"

// pendingDef tracks an in-progress `!` definition so that `^`
// continuations can extend and re-apply it.
type pendingDef struct {
	typ   string
	name  string
	value string
}

type parseState struct {
	cfg      *Config
	file     string
	root     *ast.Root
	warnings []error

	topic string

	lastTrigger     *ast.Trigger
	triggerOpen     bool // true while a % can still attach to lastTrigger
	lastReplyIdx    int
	lastCondIdx     int
	lastWasRedirect bool
	lastCmd         byte // '+', '-', '%', '^', '@', '*', '!', '>', '<', 0

	def *pendingDef

	concat string

	inObject    bool
	objectMacro *ast.Macro
}

// Parse parses a named sequence of source lines into an ast.Root.
//
// In strict mode, the first structural violation returns a
// *ParseError and a nil Root. In non-strict mode, offending lines are
// skipped, a warning is logged for each, and the second return value
// carries the accumulated warnings; the one error Parse still returns
// is a `! version` above MaxVersion.
func Parse(filename string, lines []string, cfg *Config) (*ast.Root, []error, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	st := &parseState{
		cfg:    cfg,
		file:   filename,
		root:   ast.NewRoot(),
		topic:  ast.DefaultTopic,
		concat: concatNone,
	}

	lines = stripBlockComments(lines)

	for i, raw := range lines {
		lineNo := i + 1
		if err := st.line(lineNo, raw); err != nil {
			return nil, st.warnings, err
		}
	}

	if st.inObject {
		if err := st.fail(len(lines), "unterminated object macro \""+st.objectMacro.Name+"\""); err != nil {
			return nil, st.warnings, err
		}
	}

	if err := st.validate(); err != nil {
		return nil, st.warnings, err
	}

	return st.root, st.warnings, nil
}

// fail records a structural problem: aborts in strict mode, warns and
// continues otherwise.
func (st *parseState) fail(line int, message string) error {
	err := newError(st.file, line, message)
	if st.cfg.Strict {
		return err
	}
	st.warnings = append(st.warnings, err)
	log.Printf("warning: %s", err.Error())
	return nil
}

// line dispatches a single source line.
func (st *parseState) line(lineNo int, raw string) error {
	trimmed := strings.TrimRight(raw, "\r\n")
	trimmed = strings.TrimSpace(trimmed)

	if st.inObject {
		if strings.HasPrefix(trimmed, "<") {
			rest := strings.TrimSpace(trimmed[1:])
			fields := strings.Fields(rest)
			if 0 < len(fields) && strings.ToLower(fields[0]) == "object" {
				return st.closeLabel(lineNo, rest)
			}
		}
		st.objectMacro.Code = append(st.objectMacro.Code, raw)
		return nil
	}

	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "//") {
		return nil
	}

	cmd := trimmed[0]
	rest := strings.TrimSpace(trimmed[1:])

	switch cmd {
	case '!', '>', '<', '+', '-', '%', '^', '@', '*':
		// known
	default:
		return st.fail(lineNo, "unknown command letter '"+string(cmd)+"'")
	}

	if rest == "" {
		if err := st.fail(lineNo, "empty payload for command '"+string(cmd)+"'"); err != nil {
			return err
		}
		return nil
	}

	switch cmd {
	case '!':
		return st.define(lineNo, rest)
	case '>':
		return st.openLabel(lineNo, rest)
	case '<':
		return st.closeLabel(lineNo, rest)
	case '+':
		return st.trigger(lineNo, rest)
	case '-':
		return st.reply(lineNo, rest)
	case '%':
		return st.previous(lineNo, rest)
	case '^':
		return st.continuation(lineNo, rest)
	case '@':
		return st.redirect(lineNo, rest)
	case '*':
		return st.condition(lineNo, rest)
	}
	return nil
}

// stripBlockComments replaces `/* ... */` spans (possibly multi-line)
// with blank lines, preserving line numbers for diagnostics.
func stripBlockComments(lines []string) []string {
	out := make([]string, len(lines))
	inBlock := false
	for i, line := range lines {
		s := line
		var kept strings.Builder
		for {
			if inBlock {
				idx := strings.Index(s, "*/")
				if idx < 0 {
					s = ""
					break
				}
				s = s[idx+2:]
				inBlock = false
				continue
			}
			idx := strings.Index(s, "/*")
			if idx < 0 {
				kept.WriteString(s)
				break
			}
			kept.WriteString(s[:idx])
			s = s[idx+2:]
			inBlock = true
		}
		out[i] = kept.String()
	}
	return out
}

func (st *parseState) openLabel(lineNo int, rest string) error {
	fields := strings.Fields(rest)
	kind := strings.ToLower(fields[0])

	switch kind {
	case "begin":
		st.topic = ast.BeginTopic
		st.root.Topic(st.topic)
		st.resetTriggerState()
		st.lastCmd = '>'
		return nil

	case "topic":
		if len(fields) < 2 {
			return st.fail(lineNo, "topic label missing a name")
		}
		name := fields[1]
		t := st.root.Topic(name)

		mode := ""
		for _, f := range fields[2:] {
			lf := strings.ToLower(f)
			if lf == "includes" || lf == "inherits" {
				mode = lf
				continue
			}
			switch mode {
			case "includes":
				t.Includes[f] = true
			case "inherits":
				t.Inherits[f] = true
			default:
				return st.fail(lineNo, "unexpected token \""+f+"\" in topic label")
			}
		}

		st.topic = name
		st.resetTriggerState()
		st.lastCmd = '>'
		return nil

	case "object":
		if len(fields) < 2 {
			return st.fail(lineNo, "object label missing a name")
		}
		name := fields[1]
		lang := ""
		if 2 < len(fields) {
			lang = fields[2]
		}
		st.inObject = true
		st.objectMacro = &ast.Macro{Name: name, Language: lang}
		st.lastCmd = '>'
		return nil

	default:
		return st.fail(lineNo, "unknown label \""+kind+"\"")
	}
}

func (st *parseState) closeLabel(lineNo int, rest string) error {
	kind := strings.ToLower(strings.Fields(rest)[0])
	switch kind {
	case "topic", "begin":
		st.topic = ast.DefaultTopic
		st.resetTriggerState()
	case "object":
		if !st.inObject {
			return st.fail(lineNo, "< object without a matching > object")
		}
		st.root.Objects = append(st.root.Objects, st.objectMacro)
		st.inObject = false
		st.objectMacro = nil
	default:
		return st.fail(lineNo, "unknown closing label \""+kind+"\"")
	}
	st.lastCmd = '<'
	return nil
}

func (st *parseState) resetTriggerState() {
	st.lastTrigger = nil
	st.triggerOpen = false
}

func (st *parseState) applyForceCase(s string) string {
	if st.cfg.ForceCase {
		return strings.ToLower(s)
	}
	return s
}

func (st *parseState) trigger(lineNo int, rest string) error {
	tr := &ast.Trigger{
		Pattern: st.applyForceCase(rest),
		File:    st.file,
		Line:    lineNo,
	}
	topic := st.root.Topic(st.topic)
	topic.AddTrigger(tr)

	st.lastTrigger = tr
	st.triggerOpen = true
	st.lastCmd = '+'
	return nil
}

func (st *parseState) reply(lineNo int, rest string) error {
	if st.lastTrigger == nil {
		return st.fail(lineNo, "reply with no preceding trigger")
	}
	st.lastTrigger.Replies = append(st.lastTrigger.Replies, rest)
	st.lastReplyIdx = len(st.lastTrigger.Replies) - 1
	st.triggerOpen = false
	st.lastCmd = '-'
	return nil
}

func (st *parseState) previous(lineNo int, rest string) error {
	if st.lastTrigger == nil || !st.triggerOpen {
		return st.fail(lineNo, "%% (previous) with no preceding trigger")
	}
	st.lastTrigger.Previous = rest
	st.triggerOpen = false
	st.lastCmd = '%'
	return nil
}

func (st *parseState) redirect(lineNo int, rest string) error {
	if st.lastTrigger == nil {
		return st.fail(lineNo, "redirect with no preceding trigger")
	}
	st.lastTrigger.Redirect = rest
	st.triggerOpen = false
	st.lastWasRedirect = true
	st.lastCmd = '@'
	return nil
}

func (st *parseState) condition(lineNo int, rest string) error {
	if st.lastTrigger == nil {
		return st.fail(lineNo, "condition with no preceding trigger")
	}
	st.lastTrigger.Conditions = append(st.lastTrigger.Conditions, rest)
	st.lastCondIdx = len(st.lastTrigger.Conditions) - 1
	st.triggerOpen = false
	st.lastCmd = '*'
	return nil
}

// continuation appends to whatever the previous command last touched.
func (st *parseState) continuation(lineNo int, rest string) error {
	switch st.lastCmd {
	case '+':
		if st.lastTrigger == nil {
			return st.fail(lineNo, "continuation with no preceding trigger")
		}
		st.lastTrigger.Pattern = st.joinConcat(st.lastTrigger.Pattern, rest)
		return nil
	case '-':
		if st.lastTrigger == nil || len(st.lastTrigger.Replies) == 0 {
			return st.fail(lineNo, "continuation with no preceding reply")
		}
		i := st.lastReplyIdx
		st.lastTrigger.Replies[i] = st.joinConcat(st.lastTrigger.Replies[i], rest)
		return nil
	case '%':
		if st.lastTrigger == nil {
			return st.fail(lineNo, "continuation with no preceding previous")
		}
		st.lastTrigger.Previous = st.joinConcat(st.lastTrigger.Previous, rest)
		return nil
	case '@':
		if st.lastTrigger == nil {
			return st.fail(lineNo, "continuation with no preceding redirect")
		}
		st.lastTrigger.Redirect = st.joinConcat(st.lastTrigger.Redirect, rest)
		return nil
	case '*':
		if st.lastTrigger == nil || len(st.lastTrigger.Conditions) == 0 {
			return st.fail(lineNo, "continuation with no preceding condition")
		}
		i := st.lastCondIdx
		st.lastTrigger.Conditions[i] = st.joinConcat(st.lastTrigger.Conditions[i], rest)
		return nil
	case '!':
		if st.def == nil {
			return st.fail(lineNo, "continuation with no preceding definition")
		}
		st.def.value = st.def.value + crlf + rest
		return st.applyDefinition(lineNo, st.def.typ, st.def.name, st.def.value)
	default:
		return st.fail(lineNo, "continuation with nothing to continue")
	}
}

func (st *parseState) joinConcat(a, b string) string {
	switch st.concat {
	case concatSpace:
		if a == "" {
			return b
		}
		return a + " " + b
	case concatNewline:
		if a == "" {
			return b
		}
		return a + "\n" + b
	default:
		return a + b
	}
}

func (st *parseState) define(lineNo int, rest string) error {
	fields := strings.SplitN(rest, " ", 2)
	typ := strings.ToLower(fields[0])
	if len(fields) < 2 {
		return st.fail(lineNo, "definition \""+typ+"\" missing a value")
	}
	remainder := fields[1]

	eq := strings.Index(remainder, "=")
	if eq < 0 {
		return st.fail(lineNo, "definition \""+typ+"\" missing '='")
	}
	name := strings.TrimSpace(remainder[:eq])
	value := strings.TrimSpace(remainder[eq+1:])

	st.def = &pendingDef{typ: typ, name: name, value: value}
	st.lastCmd = '!'

	return st.applyDefinition(lineNo, typ, name, value)
}

// applyDefinition performs (or re-performs, for continuations) the
// effect of one `!` definition. It is idempotent: calling it again
// with an updated value simply overwrites the prior assignment.
func (st *parseState) applyDefinition(lineNo int, typ, name, value string) error {
	switch typ {
	case "version":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return st.fail(lineNo, "bad version number \""+value+"\"")
		}
		if MaxVersion < v {
			return newError(st.file, lineNo, "unsupported version "+value)
		}
		return nil

	case "local":
		switch strings.ToLower(name) {
		case "concat":
			switch strings.ToLower(value) {
			case concatNone, concatSpace, concatNewline:
				st.concat = strings.ToLower(value)
			default:
				return st.fail(lineNo, "unknown concat mode \""+value+"\"")
			}
		default:
			return st.fail(lineNo, "unknown local option \""+name+"\"")
		}
		return nil

	case "global":
		return st.defineSimple(st.root.Begin.Global, name, value)
	case "var":
		return st.defineSimple(st.root.Begin.Var, name, value)
	case "sub":
		return st.defineSimple(st.root.Begin.Sub, name, value)
	case "person":
		return st.defineSimple(st.root.Begin.Person, name, value)

	case "array":
		if value == "<undef>" {
			delete(st.root.Begin.Array, name)
			return nil
		}
		st.root.Begin.Array[name] = splitArrayValue(value)
		return nil

	default:
		return st.fail(lineNo, "unknown definition type \""+typ+"\"")
	}
}

func (st *parseState) defineSimple(m map[string]string, name, value string) error {
	if value == "<undef>" {
		delete(m, name)
		return nil
	}
	m[name] = value
	return nil
}

// splitArrayValue implements spec.md §4.1's array-splitting rule:
// segments joined by the `<crlf>` continuation marker are split
// apart first, then each segment is split on `|` if it contains one,
// otherwise on whitespace. The results are flattened into one list.
func splitArrayValue(value string) []string {
	var out []string
	for _, segment := range strings.Split(value, crlf) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		var parts []string
		if strings.Contains(segment, "|") {
			parts = strings.Split(segment, "|")
		} else {
			parts = strings.Fields(segment)
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// validate runs the strict-mode diagnostics that can only be checked
// once a trigger is fully built: unbalanced optional brackets, an
// uppercase letter when force-case is off, and a trigger with no
// output at all (spec.md §9's resolved Open Question).
func (st *parseState) validate() error {
	for _, topic := range st.root.Topics {
		for _, tr := range topic.Triggers {
			if depth := bracketDepth(tr.Pattern); depth != 0 {
				if err := st.fail(tr.Line, "unbalanced optional brackets in trigger \""+tr.Pattern+"\""); err != nil {
					return err
				}
			}
			if st.cfg.Strict && !st.cfg.ForceCase && hasUpper(tr.Pattern) {
				if err := st.fail(tr.Line, "trigger \""+tr.Pattern+"\" contains an uppercase letter"); err != nil {
					return err
				}
			}
			if !tr.HasOutput() {
				if err := st.fail(tr.Line, "trigger \""+tr.Pattern+"\" has no reply, redirect, or condition"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func bracketDepth(pattern string) int {
	depth := 0
	for _, r := range pattern {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
	}
	return depth
}

func hasUpper(s string) bool {
	for _, r := range s {
		if 'A' <= r && r <= 'Z' {
			return true
		}
	}
	return false
}
