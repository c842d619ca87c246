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
	"strings"
)

// WordCount counts non-whitespace tokens in s, excluding the wildcard
// and grouping symbols * # _ | [ ] — the same rule the sorter applies
// to trigger patterns (spec.md §4.3), offered here for callers
// counting plain text (e.g. substitution keys).
func WordCount(s string) int {
	cleaned := wordSplitter.ReplaceAllString(s, " ")
	return len(strings.Fields(cleaned))
}

var wordSplitter = regexp.MustCompile(`[*#_|\[\]]`)

var defaultPunctuation = regexp.MustCompile(`[.,!?;:]`)

// Strip removes characters that don't belong in a normalized message:
// outside UTF-8 mode, everything but [a-z0-9_ ] (after lowering);
// inside UTF-8 mode, only the configured Unicode punctuation class is
// removed and letters/digits from any script survive. unicodePunct
// may be nil to use the default [.,!?;:] class.
func Strip(s string, utf8Mode bool, unicodePunct *regexp.Regexp) string {
	if !utf8Mode {
		return nonASCIIWord.ReplaceAllString(s, "")
	}
	p := unicodePunct
	if p == nil {
		p = defaultPunctuation
	}
	return p.ReplaceAllString(s, "")
}

var nonASCIIWord = regexp.MustCompile(`[^a-z0-9_ ]`)

// Formal title-cases each whitespace-separated word of s.
func Formal(s string, utf8Mode bool) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = TitleWord(w, utf8Mode)
	}
	return strings.Join(words, " ")
}

// Sentence upper-cases the first rune of s, leaving the rest intact.
func Sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
