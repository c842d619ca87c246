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

package match

import (
	"regexp"
	"strconv"
	"strings"
)

// Context supplies the dynamic lookups a compiled pattern's <bot>,
// <get>, <input>, and <reply> tags need (spec.md §4.4). Arrays is the
// brain's @NAME tables. BotVar and GetVar return "undefined" for an
// unset name, matching the tag-expansion default. History(isInput,
// n) returns history slot n (1-based, 1 = most recent), "undefined"
// if there is no such turn yet.
type Context struct {
	Arrays  map[string][]string
	BotVar  func(name string) string
	GetVar  func(name string) string
	History func(isInput bool, n int) string
}

var weightRun = regexp.MustCompile(`\s*\{weight=\d+\}\s*`)

// Compile turns a trigger pattern into an anchored regexp against a
// normalized message, per spec.md §4.4's rewrite list. The regexp's
// capturing groups follow the wildcards in source order, so callers
// can label <star1>, <star2>, ....
func Compile(pattern string, ctx Context, opts Options) (*regexp.Regexp, error) {
	src, err := compileBody(pattern, ctx, opts)
	if err != nil {
		return nil, err
	}
	return regexp.Compile("^" + src + "$")
}

// compileBody does the textual rewrite without the anchors, so it can
// be reused for [optional|alternatives] which compile as inner,
// non-capturing patterns.
func compileBody(pattern string, ctx Context, opts Options) (string, error) {
	pattern = weightRun.ReplaceAllString(pattern, "")
	var literalFragments []string
	pattern = expandArrays(pattern, ctx.Arrays, &literalFragments)
	pattern = expandTags(pattern, ctx)

	var out strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == fragmentMarker {
			end := i + 1
			for end < len(runes) && runes[end] != fragmentMarker {
				end++
			}
			idx, err := strconv.Atoi(string(runes[i+1 : end]))
			if err != nil {
				return "", &CompileError{Pattern: pattern, Message: "malformed array placeholder"}
			}
			out.WriteString(literalFragments[idx])
			i = end
			continue
		}
		switch r {
		case '*':
			if isBareToken(runes, i) {
				out.WriteString(`(.*?)`)
			} else {
				out.WriteString(`(.+?)`)
			}
		case '#':
			out.WriteString(`(\d+?)`)
		case '_':
			if opts.UTF8 {
				out.WriteString(`([\p{L}]+?)`)
			} else {
				out.WriteString(`([A-Za-z]+?)`)
			}
		case '\\':
			if i+1 < len(runes) && runes[i+1] == '_' {
				out.WriteString("_")
				i++
			} else {
				out.WriteRune(r)
			}
		case '[':
			end, alts, err := readOptional(runes, i)
			if err != nil {
				return "", err
			}
			compiled, err := compileOptional(alts, ctx, opts)
			if err != nil {
				return "", err
			}
			// The group's own separators stand in for the spaces around
			// it, so an omitted optional leaves a single space.
			trimmed := strings.TrimSuffix(out.String(), " ")
			out.Reset()
			out.WriteString(trimmed)
			out.WriteString(compiled)
			i = end
			for i+1 < len(runes) && runes[i+1] == ' ' {
				i++
			}
		default:
			out.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return out.String(), nil
}

// isBareToken reports whether the * at runes[i] stands alone as a
// whole token (whitespace or string edge on both sides), the case
// spec.md §4.4 maps to (.*?) instead of (.+?).
func isBareToken(runes []rune, i int) bool {
	before := i == 0 || runes[i-1] == ' '
	after := i == len(runes)-1 || runes[i+1] == ' '
	return before && after
}

// readOptional scans a [ ... ] group starting at open (the index of
// '['), honoring nested brackets, and returns the index of the
// matching ']' plus the |-separated alternatives.
func readOptional(runes []rune, open int) (int, []string, error) {
	depth := 0
	var buf strings.Builder
	for i := open; i < len(runes); i++ {
		switch runes[i] {
		case '[':
			depth++
			if depth > 1 {
				buf.WriteRune(runes[i])
			}
		case ']':
			depth--
			if depth == 0 {
				return i, strings.Split(buf.String(), "|"), nil
			}
			buf.WriteRune(runes[i])
		default:
			if depth > 0 {
				buf.WriteRune(runes[i])
			}
		}
	}
	return 0, nil, &CompileError{Pattern: string(runes), Message: "unbalanced [ in trigger"}
}

func compileOptional(alts []string, ctx Context, opts Options) (string, error) {
	parts := make([]string, 0, len(alts)+1)
	for _, alt := range alts {
		inner, err := compileBody(strings.TrimSpace(alt), ctx, opts)
		if err != nil {
			return "", err
		}
		inner = makeNonCapturing(inner)
		parts = append(parts, `(?:\s|\b)+`+inner+`(?:\s|\b)+`)
	}
	parts = append(parts, `(?:\b|\s)+`)
	return `(?:` + strings.Join(parts, "|") + `)`, nil
}

var capturingGroup = regexp.MustCompile(`\(\?|\(`)

func makeNonCapturing(s string) string {
	return capturingGroup.ReplaceAllStringFunc(s, func(m string) string {
		if m == "(?" {
			return m
		}
		return "(?:"
	})
}

// fragmentMarker delimits a literalFragments index spliced into the
// pattern by expandArrays, so the already-compiled regex text it
// carries (e.g. "(?:red|blue)") survives the literal-character loop
// in compileBody without being re-escaped by regexp.QuoteMeta.
const fragmentMarker = '\x00'

// expandArrays substitutes every @NAME with a non-capturing
// alternation of the array's items; an unknown name deletes.
func expandArrays(pattern string, arrays map[string][]string, fragments *[]string) string {
	return arrayTag.ReplaceAllStringFunc(pattern, func(m string) string {
		name := arrayTag.FindStringSubmatch(m)[1]
		items, have := arrays[name]
		if !have || len(items) == 0 {
			return ""
		}
		quoted := make([]string, len(items))
		for i, it := range items {
			quoted[i] = regexp.QuoteMeta(it)
		}
		frag := `(?:` + strings.Join(quoted, "|") + `)`
		idx := len(*fragments)
		*fragments = append(*fragments, frag)
		return string(fragmentMarker) + strconv.Itoa(idx) + string(fragmentMarker)
	})
}

var arrayTag = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

var simpleTag = regexp.MustCompile(`<(bot|get)\s+([A-Za-z0-9_]+)>`)
var historyTag = regexp.MustCompile(`<(input|reply)(\d?)>`)

// expandTags replaces <bot name>, <get name>, <input[N]>, <reply[N]>
// with their current, normalized values. Unlike reply-side tag
// expansion these are resolved once, before the pattern is turned
// into a regexp; the result is itself re-stripped so it matches the
// same normalization the incoming message went through.
func expandTags(pattern string, ctx Context) string {
	pattern = simpleTag.ReplaceAllStringFunc(pattern, func(m string) string {
		parts := simpleTag.FindStringSubmatch(m)
		var v string
		switch parts[1] {
		case "bot":
			if ctx.BotVar != nil {
				v = ctx.BotVar(parts[2])
			}
		case "get":
			if ctx.GetVar != nil {
				v = ctx.GetVar(parts[2])
			}
		}
		if v == "" {
			v = "undefined"
		}
		return Strip(Lower(v, false), false, nil)
	})

	pattern = historyTag.ReplaceAllStringFunc(pattern, func(m string) string {
		parts := historyTag.FindStringSubmatch(m)
		n := 1
		if parts[2] != "" {
			if v, err := strconv.Atoi(parts[2]); err == nil {
				n = v
			}
		}
		var v string
		if ctx.History != nil {
			v = ctx.History(parts[1] == "input", n)
		}
		if v == "" {
			v = "undefined"
		}
		return Strip(Lower(v, false), false, nil)
	})

	return pattern
}

// CompileError reports a malformed trigger pattern.
type CompileError struct {
	Pattern string
	Message string
}

func (e *CompileError) Error() string {
	return "compiling pattern " + strconv.Quote(e.Pattern) + ": " + e.Message
}
