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

// Package sorter produces the ordered trigger lists (spec.md §4.3)
// that the matcher depends on: a deterministic priority order derived
// from topic closure, {weight=N}, inheritance depth, pattern kind,
// word count, and pattern length.
package sorter

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rivescript-labs/rivescript/ast"
)

// DefaultDepth bounds topic closure recursion (includes/inherits).
const DefaultDepth = 50

// kind classifies a trigger pattern for emission ordering.
type kind int

const (
	kindAtomic kind = iota
	kindOption
	kindAlpha
	kindNumber
	kindWild
	kindUnder
	kindPound
	kindStar
)

// emission order within an inheritance band.
var emissionOrder = []kind{kindAtomic, kindOption, kindAlpha, kindNumber, kindWild, kindUnder, kindPound, kindStar}

// Entry is one sorted trigger, annotated with the inheritance band it
// was collected at.
type Entry struct {
	Trigger  *ast.Trigger
	Inherits int // -1 means no {inherits=N} label; sorts before band 1
}

// Topics looks up triggers, including/inherits maps for a brain-like
// source. Package brain.Brain satisfies this without an import cycle.
type Topics interface {
	TopicTriggers(name string) []*ast.Trigger
	TopicIncludes(name string) []string
	TopicInherits(name string) []string
}

var weightTag = regexp.MustCompile(`\{weight=(\d+)\}`)

func weightOf(pattern string) int {
	m := weightTag.FindStringSubmatch(pattern)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func classify(pattern string) kind {
	trimmed := strings.TrimSpace(weightTag.ReplaceAllString(pattern, ""))
	switch trimmed {
	case "_":
		return kindUnder
	case "#":
		return kindPound
	case "*":
		return kindStar
	}
	switch {
	case strings.Contains(trimmed, "_"):
		return kindAlpha
	case strings.Contains(trimmed, "#"):
		return kindNumber
	case strings.Contains(trimmed, "*"):
		return kindWild
	case strings.Contains(trimmed, "["):
		return kindOption
	default:
		return kindAtomic
	}
}

var wordSplitter = regexp.MustCompile(`[*#_|\[\]]`)

// wordCount counts non-whitespace tokens, excluding the wildcard and
// grouping symbols * # _ | [ ].
func wordCount(pattern string) int {
	cleaned := wordSplitter.ReplaceAllString(pattern, " ")
	return len(strings.Fields(cleaned))
}

// closureNode is one collected (trigger, inheritance band) pair before
// final bucketing.
type closureNode struct {
	trigger  *ast.Trigger
	inherits int
	order    int
}

// closure walks topic T's includes/inherits graph up to depth,
// collecting every trigger reachable, each tagged with its
// inheritance band (-1 for triggers belonging to T or reached only via
// includes).
func closure(topics Topics, root string, depth int, previousOnly bool) []closureNode {
	var out []closureNode
	seenTopic := make(map[string]bool)
	order := 0

	var visit func(name string, band int, d int)
	visit = func(name string, band int, d int) {
		if d > depth {
			return
		}
		key := name + "@" + strconv.Itoa(band)
		if seenTopic[key] {
			return
		}
		seenTopic[key] = true

		for _, tr := range topics.TopicTriggers(name) {
			hasPrev := tr.Previous != ""
			if hasPrev != previousOnly {
				continue
			}
			out = append(out, closureNode{trigger: tr, inherits: band, order: order})
			order++
		}

		for _, inc := range topics.TopicIncludes(name) {
			visit(inc, band, d+1)
		}
		for _, inh := range topics.TopicInherits(name) {
			nextBand := band + 1
			if band < 0 {
				nextBand = 1
			}
			visit(inh, nextBand, d+1)
		}
	}

	visit(root, -1, 0)
	return out
}

// bucket groups nodes for one (weight, inheritance band) pair by kind.
type bucket struct {
	weight   int
	inherits int
	kinds    map[kind][]closureNode
}

// Sort produces the final, emission-ordered trigger list for topic
// name, limited to triggers with or without a %Previous clause
// depending on previousOnly. depth bounds closure recursion; pass
// DefaultDepth when the caller has no override.
func Sort(topics Topics, name string, depth int, previousOnly bool) []Entry {
	nodes := closure(topics, name, depth, previousOnly)

	buckets := make(map[int]*bucket) // keyed by weight*100000 + inherits+1, see below
	var weights []int
	seen := make(map[int]bool)

	key := func(weight, inherits int) int {
		// inherits is -1..depth; offset so it's always non-negative
		// and safely distinguishable from the weight component.
		return weight*100000 + (inherits + 1)
	}

	for _, n := range nodes {
		w := weightOf(n.trigger.Pattern)
		k := key(w, n.inherits)
		b, have := buckets[k]
		if !have {
			b = &bucket{weight: w, inherits: n.inherits, kinds: make(map[kind][]closureNode)}
			buckets[k] = b
		}
		kd := classify(n.trigger.Pattern)
		b.kinds[kd] = append(b.kinds[kd], n)
		if !seen[w] {
			seen[w] = true
			weights = append(weights, w)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(weights)))

	var inheritsByWeight = make(map[int][]int)
	for k, b := range buckets {
		_ = k
		inheritsByWeight[b.weight] = append(inheritsByWeight[b.weight], b.inherits)
	}
	for w := range inheritsByWeight {
		list := inheritsByWeight[w]
		sort.Ints(list)
		inheritsByWeight[w] = dedupInts(list)
	}

	var out []Entry
	for _, w := range weights {
		for _, inh := range inheritsByWeight[w] {
			b := buckets[key(w, inh)]
			for _, kd := range emissionOrder {
				items := b.kinds[kd]
				switch kd {
				case kindUnder, kindPound, kindStar:
					out = append(out, sortSoloWildcard(items)...)
				default:
					out = append(out, sortByWordsAndLength(items)...)
				}
			}
		}
	}

	return out
}

func dedupInts(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func sortByWordsAndLength(items []closureNode) []Entry {
	sort.SliceStable(items, func(i, j int) bool {
		wi, wj := wordCount(items[i].trigger.Pattern), wordCount(items[j].trigger.Pattern)
		if wi != wj {
			return wi > wj
		}
		li, lj := len(items[i].trigger.Pattern), len(items[j].trigger.Pattern)
		if li != lj {
			return li > lj
		}
		return items[i].order < items[j].order
	})
	return toEntries(items)
}

// sortSoloWildcard orders the under/pound/star buckets by length
// descending, collapsing duplicate patterns.
func sortSoloWildcard(items []closureNode) []Entry {
	seen := make(map[string]bool)
	deduped := items[:0:0]
	for _, it := range items {
		if seen[it.trigger.Pattern] {
			continue
		}
		seen[it.trigger.Pattern] = true
		deduped = append(deduped, it)
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		li, lj := len(deduped[i].trigger.Pattern), len(deduped[j].trigger.Pattern)
		if li != lj {
			return li > lj
		}
		return deduped[i].order < deduped[j].order
	})
	return toEntries(deduped)
}

func toEntries(items []closureNode) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Trigger: it.trigger, Inherits: it.inherits}
	}
	return out
}

// SortSubstitutions orders a substitution key list (sub or person) by
// word count descending, then length descending, per spec.md §4.3's
// last paragraph. Longest/most-specific keys are applied first so a
// multi-word phrase is substituted before any of its single-word
// substrings.
func SortSubstitutions(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := len(strings.Fields(out[i])), len(strings.Fields(out[j]))
		if wi != wj {
			return wi > wj
		}
		return len(out[i]) > len(out[j])
	})
	return out
}
