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

// Package match turns trigger patterns and user text into the form
// the rest of the engine compares: lowered, substituted, stripped of
// punctuation (spec.md §4.4), and finally an anchored regexp with
// captures for wildcards, arrays, and tags.
package match

import (
	"regexp"
	"strings"
)

// Options carries the normalization/compile knobs spec.md §6 exposes
// as configuration: UTF8 switches script-aware case folding and
// punctuation stripping, UnicodePunct overrides the default
// [.,!?;:] class.
type Options struct {
	UTF8         bool
	UnicodePunct *regexp.Regexp
}

// Normalize lowers s, applies subs (already sorted longest-first by
// package sorter) left to right, then strips punctuation per opts.
func Normalize(s string, subs []Substitution, opts Options) string {
	s = Lower(s, opts.UTF8)
	s = applySubstitutions(s, subs)
	s = Strip(s, opts.UTF8, opts.UnicodePunct)
	return collapseSpaces(s)
}

// Substitution is one sub/person replacement pair; From must already
// be lowered to match a lowered message.
type Substitution struct {
	From string
	To   string
}

// SortedSubstitutions builds the Substitution list from a map, sorted
// by package sorter's word-count/length rule so longer, more specific
// keys are tried first.
func SortedSubstitutions(m map[string]string, sortKeys func([]string) []string) []Substitution {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	keys = sortKeys(keys)
	out := make([]Substitution, len(keys))
	for i, k := range keys {
		out[i] = Substitution{From: k, To: m[k]}
	}
	return out
}

func applySubstitutions(s string, subs []Substitution) string {
	for _, sub := range subs {
		if sub.From == "" {
			continue
		}
		s = replaceWord(s, sub.From, sub.To)
	}
	return s
}

// replaceWord substitutes occurrences of from in s bounded by word
// edges, the way RiveScript subs only ever replace whole tokens or
// token phrases, never substrings inside a larger word. \b anchors
// (rather than consuming the surrounding whitespace) so adjacent
// matches, e.g. "a a a", each get replaced in one non-overlapping
// pass.
func replaceWord(s, from, to string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`)
	return re.ReplaceAllString(s, escapeDollar(to))
}

func escapeDollar(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

var multiSpace = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}
