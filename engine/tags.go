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

package engine

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/rivescript-labs/rivescript/match"
	"github.com/rivescript-labs/rivescript/parser"
)

// maxTagPasses bounds the shortcut-rewrite + simple-tag expansion
// loop; real replies settle in one or two passes, this just prevents
// a pathological input (e.g. a sub that re-introduces its own
// trigger tag) from looping forever.
const maxTagPasses = 20

var (
	starTag      = regexp.MustCompile(`<star(\d*)>`)
	botstarTag   = regexp.MustCompile(`<botstar(\d*)>`)
	historyTagRx = regexp.MustCompile(`<(input|reply)(\d*)>`)
	idTag        = regexp.MustCompile(`<id>`)
	botTag       = regexp.MustCompile(`<bot\s+([A-Za-z0-9_]+)(?:=([^>]*))?>`)
	envTag       = regexp.MustCompile(`<env\s+([A-Za-z0-9_]+)(?:=([^>]*))?>`)
	getTag       = regexp.MustCompile(`<get\s+([A-Za-z0-9_]+)>`)
	setTag       = regexp.MustCompile(`<set\s+([A-Za-z0-9_]+)=([^>]*)>`)
	mathTag      = regexp.MustCompile(`<(add|sub|mult|div)\s+([A-Za-z0-9_]+)=(-?\d+)>`)
	callTag      = regexp.MustCompile(`<call>([^<]*)</call>`)
	topicTag     = regexp.MustCompile(`\{topic=([^}]*)\}`)
	weightTagRx  = regexp.MustCompile(`\{weight=\d+\}`)
	inlineRedir  = regexp.MustCompile(`\{@([^}]*)\}`)
	atShortcut   = regexp.MustCompile(`<@>`)
	arrayPick    = regexp.MustCompile(`\(@([A-Za-z0-9_]+)\)`)
	runtimeParse = regexp.MustCompile(`\{!([^}]*)\}`)

	personShortcut    = regexp.MustCompile(`<person>`)
	formalShortcut    = regexp.MustCompile(`<formal>`)
	sentenceShortcut  = regexp.MustCompile(`<sentence>`)
	uppercaseShortcut = regexp.MustCompile(`<uppercase>`)
	lowercaseShortcut = regexp.MustCompile(`<lowercase>`)
)

// expandTags applies the shortcut rewrites, every block and inline
// tag of spec.md §4.4's table, repeatedly, until a pass makes no
// further change or maxTagPasses is hit.
func (s *state) expandTags(text string, stars, botstars []string) string {
	for i := 0; i < maxTagPasses; i++ {
		next := s.expandPass(text, stars, botstars)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

func (s *state) expandPass(text string, stars, botstars []string) string {
	text = personShortcut.ReplaceAllString(text, "{person}<star>{/person}")
	text = atShortcut.ReplaceAllString(text, "{@<star>}")
	text = formalShortcut.ReplaceAllString(text, "{formal}<star>{/formal}")
	text = sentenceShortcut.ReplaceAllString(text, "{sentence}<star>{/sentence}")
	text = uppercaseShortcut.ReplaceAllString(text, "{uppercase}<star>{/uppercase}")
	text = lowercaseShortcut.ReplaceAllString(text, "{lowercase}<star>{/lowercase}")

	text = s.expandBlocks(text, stars, botstars)

	text = starTag.ReplaceAllStringFunc(text, func(m string) string {
		return starAt(stars, starTag.FindStringSubmatch(m)[1])
	})
	text = botstarTag.ReplaceAllStringFunc(text, func(m string) string {
		return starAt(botstars, botstarTag.FindStringSubmatch(m)[1])
	})

	text = historyTagRx.ReplaceAllStringFunc(text, func(m string) string {
		parts := historyTagRx.FindStringSubmatch(m)
		n := 1
		if parts[2] != "" {
			if v, err := strconv.Atoi(parts[2]); err == nil {
				n = v
			}
		}
		input, reply := s.sessions.GetHistory(s.userID)
		if parts[1] == "input" {
			return input.Get(n)
		}
		return reply.Get(n)
	})

	text = idTag.ReplaceAllString(text, s.userID)

	text = botTag.ReplaceAllStringFunc(text, func(m string) string {
		parts := botTag.FindStringSubmatch(m)
		if len(parts) > 2 && parts[2] != "" {
			s.brn.SetVar(parts[1], parts[2])
			return ""
		}
		return s.brn.GetVar(parts[1])
	})

	text = envTag.ReplaceAllStringFunc(text, func(m string) string {
		parts := envTag.FindStringSubmatch(m)
		if len(parts) > 2 && parts[2] != "" {
			s.brn.SetGlobal(parts[1], parts[2])
			return ""
		}
		return s.brn.GetGlobal(parts[1])
	})

	// set and math run before get so `<set x=1>...<get x>` in the same
	// reply sees the assignment, matching how a script author expects
	// same-line assignment-then-read to behave.
	text = setTag.ReplaceAllStringFunc(text, func(m string) string {
		parts := setTag.FindStringSubmatch(m)
		s.sessions.Set(s.userID, map[string]string{parts[1]: parts[2]})
		return ""
	})

	text = mathTag.ReplaceAllStringFunc(text, func(m string) string {
		parts := mathTag.FindStringSubmatch(m)
		return s.applyMath(parts[1], parts[2], parts[3])
	})

	text = getTag.ReplaceAllStringFunc(text, func(m string) string {
		name := getTag.FindStringSubmatch(m)[1]
		v, have := s.sessions.Get(s.userID, name)
		if !have {
			return "undefined"
		}
		return v
	})

	text = weightTagRx.ReplaceAllString(text, "")

	text = topicTag.ReplaceAllStringFunc(text, func(m string) string {
		name := topicTag.FindStringSubmatch(m)[1]
		s.sessions.Set(s.userID, map[string]string{"topic": name})
		return ""
	})

	text = arrayPick.ReplaceAllStringFunc(text, func(m string) string {
		name := arrayPick.FindStringSubmatch(m)[1]
		s.brn.RLock()
		items, have := s.brn.Array[name]
		s.brn.RUnlock()
		if !have || len(items) == 0 {
			return m
		}
		return "{random}" + strings.Join(items, "|") + "{/random}"
	})

	text = callTag.ReplaceAllStringFunc(text, func(m string) string {
		parts := callTag.FindStringSubmatch(m)[1]
		return s.callObject(parts)
	})

	text = inlineRedir.ReplaceAllStringFunc(text, func(m string) string {
		target := inlineRedir.FindStringSubmatch(m)[1]
		return s.inlineRedirect(target)
	})

	text = runtimeParse.ReplaceAllStringFunc(text, func(m string) string {
		src := runtimeParse.FindStringSubmatch(m)[1]
		s.runtimeMerge(src)
		return ""
	})

	return text
}

// expandBlocks handles the {tag}content{/tag} forms, recursing into
// content first so nested tags resolve innermost-out, then applying
// the block's own transform.
func (s *state) expandBlocks(text string, stars, botstars []string) string {
	for _, name := range []string{"random", "formal", "sentence", "uppercase", "lowercase", "person"} {
		text = s.expandOneBlockKind(text, name, stars, botstars)
	}
	return text
}

func (s *state) expandOneBlockKind(text, name string, stars, botstars []string) string {
	open := "{" + name + "}"
	closeTag := "{/" + name + "}"
	for {
		start := strings.Index(text, open)
		if start < 0 {
			return text
		}
		depth := 1
		pos := start + len(open)
		end := -1
		for pos < len(text) {
			if strings.HasPrefix(text[pos:], open) {
				depth++
				pos += len(open)
				continue
			}
			if strings.HasPrefix(text[pos:], closeTag) {
				depth--
				if depth == 0 {
					end = pos
					break
				}
				pos += len(closeTag)
				continue
			}
			pos++
		}
		if end < 0 {
			return text
		}
		inner := text[start+len(open) : end]
		inner = s.expandPass(inner, stars, botstars)
		replacement := applyBlockTransform(name, inner, s)
		text = text[:start] + replacement + text[end+len(closeTag):]
	}
}

func applyBlockTransform(name, content string, s *state) string {
	switch name {
	case "random":
		parts := strings.Split(content, "|")
		return parts[rand.Intn(len(parts))]
	case "formal":
		return match.Formal(content, s.opts.UTF8)
	case "sentence":
		return match.Sentence(content)
	case "uppercase":
		return strings.ToUpper(content)
	case "lowercase":
		return strings.ToLower(content)
	case "person":
		return applySubstitutions(content, s.persons)
	default:
		return content
	}
}

func applySubstitutions(s string, subs []match.Substitution) string {
	for _, sub := range subs {
		if sub.From == "" {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(sub.From) + `\b`)
		s = re.ReplaceAllString(s, strings.ReplaceAll(sub.To, "$", "$$"))
	}
	return s
}

func starAt(stars []string, nStr string) string {
	n := 1
	if nStr != "" {
		if v, err := strconv.Atoi(nStr); err == nil {
			n = v
		}
	}
	if n < 1 || n > len(stars) {
		return "undefined"
	}
	return stars[n-1]
}

func (s *state) applyMath(op, name, deltaStr string) string {
	delta, err := strconv.Atoi(deltaStr)
	if err != nil {
		return `[ERR: Math can't "` + deltaStr + `" non-numeric value]`
	}

	raw, have := s.sessions.Get(s.userID, name)
	if !have || raw == "" {
		raw = "0"
	}
	current, err := strconv.Atoi(raw)
	if err != nil {
		return `[ERR: Math can't "` + raw + `" non-numeric value]`
	}

	var result int
	switch op {
	case "add":
		result = current + delta
	case "sub":
		result = current - delta
	case "mult":
		result = current * delta
	case "div":
		if delta == 0 {
			return "[ERR: Can't divide by zero!]"
		}
		result = current / delta
	}

	value := strconv.Itoa(result)
	s.sessions.Set(s.userID, map[string]string{name: value})
	return ""
}

func (s *state) callObject(call string) string {
	fields := strings.Fields(call)
	if len(fields) == 0 {
		return "[ERR: Object Not Found]"
	}
	name, args := fields[0], fields[1:]

	s.brn.RLock()
	lang, have := s.brn.ObjectLanguages[name]
	s.brn.RUnlock()
	if !have {
		return "[ERR: Object Not Found]"
	}

	handler, have := s.brn.Handlers[lang]
	if !have {
		return "[ERR: Object Not Found]"
	}

	out, err := handler.Call(context.Background(), s.userID, name, args)
	if err != nil {
		return "[ERR: Object Not Found]"
	}
	return out
}

// inlineRedirect implements {@target} and its <@> shortcut: the
// target (with its own tags already expanded) is re-run through the
// matcher in the topic currently being expanded, one redirect level
// deeper.
func (s *state) inlineRedirect(target string) string {
	target = match.Normalize(target, s.subs, s.opts)
	out, err := s.topicReply(s.curTopic, target, s.curDepth+1, false)
	if err != nil {
		return s.cfg.errorMessage(errDeepRecursion)
	}
	return out
}

// runtimeMerge implements {!...}: the contained source is streamed
// back through the parser and merged into the live brain, per
// spec.md §4.4.
func (s *state) runtimeMerge(src string) {
	lines := strings.Split(src, "\\n")
	root, _, err := parser.Parse("<runtime>", lines, parser.DefaultConfig())
	if err != nil {
		return
	}
	s.brn.Merge(root)
}
