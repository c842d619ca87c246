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

// Package engine implements the matcher and reply pipeline of
// spec.md §4.5: normalization, the BEGIN block, %Previous resolution,
// plain matching, condition evaluation, weighted random selection
// with bounded redirect recursion, tag expansion, and history
// update.
package engine

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/rivescript-labs/rivescript/ast"
	"github.com/rivescript-labs/rivescript/brain"
	"github.com/rivescript-labs/rivescript/match"
	"github.com/rivescript-labs/rivescript/session"
	"github.com/rivescript-labs/rivescript/sorter"
)

// Config holds the reply-time knobs of spec.md §6: Depth bounds
// inheritance closure (already applied when the Buffer was built) and
// redirect recursion; UTF8/UnicodePunct drive normalization and regex
// compilation; ForceCase is applied at parse time and not consulted
// here; ErrorMessages optionally remaps the three engine-surfaced
// reply errors.
type Config struct {
	Depth              int
	UTF8               bool
	ForceCase          bool
	UnicodePunct       *regexp.Regexp
	ErrorMessages      map[string]string
}

// DefaultConfig matches rivescript.NewConfig()'s core defaults.
func DefaultConfig() Config {
	return Config{Depth: 50}
}

const (
	errNoReplyMatched  = "ERR: No Reply Matched"
	errNoReplyFound    = "ERR: No Reply Found"
	errDeepRecursion   = "ERR: Deep Recursion Detected!"
)

func (c Config) errorMessage(key string) string {
	if c.ErrorMessages != nil {
		if v, have := c.ErrorMessages[key]; have {
			return v
		}
	}
	return key
}

// state carries everything one Reply call's recursive tree needs,
// built once per call so the recursive steps don't have to thread a
// dozen parameters.
type state struct {
	brn      *brain.Brain
	buf      *sorter.Buffer
	sessions session.Manager
	cfg      Config
	userID   string
	subs     []match.Substitution
	persons  []match.Substitution
	opts     match.Options

	// curTopic/curDepth track the topic and redirect depth of the
	// topicReply call currently expanding tags, so {@target} and <@>
	// can recurse without threading extra parameters through every
	// tag-expansion helper.
	curTopic string
	curDepth int
}

// Reply is the entry point of spec.md §4.5: given a user id and a raw
// message, it returns the bot's reply text.
func Reply(brn *brain.Brain, buf *sorter.Buffer, sessions session.Manager, cfg Config, userID, message string) (string, error) {
	sessions.Init(userID)

	brn.RLock()
	subMap := copyStrMap(brn.Sub)
	personMap := copyStrMap(brn.Person)
	brn.RUnlock()

	s := &state{
		brn:      brn,
		buf:      buf,
		sessions: sessions,
		cfg:      cfg,
		userID:   userID,
		subs:     namedSubs(buf.Sub, subMap),
		persons:  namedSubs(buf.Person, personMap),
		opts:     match.Options{UTF8: cfg.UTF8, UnicodePunct: cfg.UnicodePunct},
	}

	normalized := match.Normalize(message, s.subs, s.opts)

	currentTopic, _ := sessions.Get(userID, "topic")
	if currentTopic == "" {
		currentTopic = ast.DefaultTopic
	}

	var final string
	if _, haveBegin := buf.Topics[ast.BeginTopic]; haveBegin && len(buf.Topics[ast.BeginTopic])+len(buf.Thats[ast.BeginTopic]) > 0 {
		beginOut, err := s.topicReply(ast.BeginTopic, "request", 0, true)
		if err != nil {
			return "", err
		}
		if strings.Contains(beginOut, "{ok}") {
			actual, err := s.topicReply(currentTopic, normalized, 0, true)
			if err != nil {
				return "", err
			}
			final = strings.Replace(beginOut, "{ok}", actual, 1)
		} else {
			final = beginOut
		}
	} else {
		var err error
		final, err = s.topicReply(currentTopic, normalized, 0, true)
		if err != nil {
			return "", err
		}
	}

	final = s.expandTags(final, nil, nil)

	sessions.AddHistory(userID, normalized, final)

	return final, nil
}

func copyStrMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func namedSubs(keys []string, values map[string]string) []match.Substitution {
	out := make([]match.Substitution, 0, len(keys))
	for _, k := range keys {
		out = append(out, match.Substitution{From: k, To: values[k]})
	}
	return out
}

func (s *state) matchContext() match.Context {
	s.brn.RLock()
	arrays := make(map[string][]string, len(s.brn.Array))
	for k, v := range s.brn.Array {
		arrays[k] = append([]string(nil), v...)
	}
	s.brn.RUnlock()

	return match.Context{
		Arrays: arrays,
		BotVar: s.brn.GetVar,
		GetVar: func(name string) string {
			v, have := s.sessions.Get(s.userID, name)
			if !have {
				return "undefined"
			}
			return v
		},
		History: func(isInput bool, n int) string {
			input, reply := s.sessions.GetHistory(s.userID)
			if isInput {
				return input.Get(n)
			}
			return reply.Get(n)
		},
	}
}

// topicReply runs steps 3-8 of spec.md §4.5 for one topic/message
// pair. outermost gates %Previous resolution: only the first call in
// a reply's recursion tree (not a {@...} or redirect recursion) tries
// it.
func (s *state) topicReply(topic, message string, depth int, outermost bool) (string, error) {
	if depth > s.cfg.Depth {
		return s.cfg.errorMessage(errDeepRecursion), nil
	}

	winner, stars, botstars := s.match(topic, message, outermost)

	if winner == nil {
		s.sessions.SetLastMatch(s.userID, "")
		return s.cfg.errorMessage(errNoReplyMatched), nil
	}
	s.sessions.SetLastMatch(s.userID, winner.Pattern)

	s.curTopic, s.curDepth = topic, depth

	reply, isRedirectTarget := s.resolveOutput(winner, stars, botstars)
	if isRedirectTarget {
		target := s.expandTags(reply, stars, botstars)
		return s.topicReply(topic, target, depth+1, false)
	}

	if reply == "" {
		return s.cfg.errorMessage(errNoReplyFound), nil
	}

	return s.expandTags(reply, stars, botstars), nil
}

// match performs step 3 (%Previous) then step 4 (plain matching),
// returning the winning trigger and its captured groups.
func (s *state) match(topic, message string, outermost bool) (winner *ast.Trigger, stars, botstars []string) {
	ctx := s.matchContext()

	if outermost {
		if thats := s.buf.Thats[topic]; len(thats) > 0 {
			_, lastReply := s.sessions.GetHistory(s.userID)
			normalizedLast := match.Normalize(lastReply.Get(1), s.subs, s.opts)
			for _, entry := range thats {
				prevRe, err := match.Compile(entry.Trigger.Previous, ctx, s.opts)
				if err != nil {
					continue
				}
				bm := prevRe.FindStringSubmatch(normalizedLast)
				if bm == nil {
					continue
				}
				patRe, err := match.Compile(entry.Trigger.Pattern, ctx, s.opts)
				if err != nil {
					continue
				}
				m := patRe.FindStringSubmatch(message)
				if m == nil {
					continue
				}
				return entry.Trigger, m[1:], bm[1:]
			}
		}
	}

	for _, entry := range s.buf.Topics[topic] {
		re, err := match.Compile(entry.Trigger.Pattern, ctx, s.opts)
		if err != nil {
			continue
		}
		m := re.FindStringSubmatch(message)
		if m != nil {
			return entry.Trigger, m[1:], nil
		}
	}

	return nil, nil, nil
}

// resolveOutput runs step 6 (conditions) then step 7 (weighted random
// choice). The bool result reports whether the chosen text is a
// redirect target rather than a reply to emit.
func (s *state) resolveOutput(tr *ast.Trigger, stars, botstars []string) (string, bool) {
	for _, cond := range tr.Conditions {
		if ok, rhs := s.evalCondition(cond, stars, botstars); ok {
			return rhs, false
		}
	}

	pool := make([]poolEntry, 0, len(tr.Replies)+1)
	for _, r := range tr.Replies {
		pool = append(pool, poolEntry{text: stripWeightTag(r), weight: weightOf(r)})
	}
	if tr.Redirect != "" {
		pool = append(pool, poolEntry{text: stripWeightTag(tr.Redirect), weight: weightOf(tr.Redirect), redirect: true})
	}
	if len(pool) == 0 {
		return "", false
	}

	choice := pickWeighted(pool)
	return choice.text, choice.redirect
}

type poolEntry struct {
	text     string
	weight   int
	redirect bool
}

var replyWeightTag = regexp.MustCompile(`\{weight=(\d+)\}`)

func stripWeightTag(s string) string {
	return replyWeightTag.ReplaceAllString(s, "")
}

func weightOf(s string) int {
	m := replyWeightTag.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pickWeighted(pool []poolEntry) poolEntry {
	total := 0
	for _, p := range pool {
		total += p.weight
	}
	n := rand.Intn(total)
	for _, p := range pool {
		if n < p.weight {
			return p
		}
		n -= p.weight
	}
	return pool[len(pool)-1]
}
