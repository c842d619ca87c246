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

package sorter

// Buffer is the full sort output for a brain (spec.md §3): per-topic
// plain and %Previous entry lists, plus sorted substitution key
// lists. It is rebuilt from scratch by Build whenever the brain
// changes; reply generation only ever reads it.
type Buffer struct {
	Topics map[string][]Entry
	Thats  map[string][]Entry
	Sub    []string
	Person []string
}

// Build runs Sort over every named topic and bundles the results with
// sorted substitution key lists, producing the object package engine
// reads during reply generation.
func Build(topics Topics, topicNames []string, sub, person map[string]string, depth int) *Buffer {
	b := &Buffer{
		Topics: make(map[string][]Entry, len(topicNames)),
		Thats:  make(map[string][]Entry, len(topicNames)),
	}
	for _, name := range topicNames {
		b.Topics[name] = Sort(topics, name, depth, false)
		b.Thats[name] = Sort(topics, name, depth, true)
	}
	b.Sub = SortSubstitutions(keysOf(sub))
	b.Person = SortSubstitutions(keysOf(person))
	return b
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
