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

package tools

import (
	"fmt"
	"io"
	"sort"

	"github.com/rivescript-labs/rivescript/ast"
	"github.com/rivescript-labs/rivescript/brain"
)

// GraphOpts controls RenderTopicGraph's output.
type GraphOpts struct {
	// ShowPatterns appends each topic's redirect count to its node
	// label (topics with no redirects keep their plain name).
	ShowPatterns bool

	// InheritFill is the Mermaid fill color for topics that inherit
	// from another topic (a node with no fill styling otherwise).
	InheritFill string
}

// RenderTopicGraph writes a Mermaid (https://mermaid.js.org/) graph
// of b's topic structure: one node per topic, a solid edge for each
// `> topic ... include othertopic` relationship, and a dashed edge
// for each `inherits`. A trigger's `@ redirect` names a message to
// re-match, not a topic, so redirects have no edge of their own in
// this graph; ShowPatterns instead annotates a topic's node label
// with its redirect count.
//
// Adapted from tools/mermaid.go's Mermaid function, which walked a
// core.Spec's Nodes/Branches graph the same way: assign each node a
// short id on first sight, then emit one edge line per outgoing
// branch. Here the graph is topics-and-includes instead of
// states-and-branches, so there is no action/non-action node
// distinction to preserve — every topic is rendered the same way.
func RenderTopicGraph(b *brain.Brain, w io.Writer, opts *GraphOpts) error {
	if opts == nil {
		opts = &GraphOpts{ShowPatterns: true, InheritFill: "#f2e6bc"}
	}

	fmt.Fprintf(w, "graph TB\n")

	names := b.TopicNames()
	sort.Strings(names)

	nids := make(map[string]string, len(names))
	for i, name := range names {
		nids[name] = fmt.Sprintf("n%d", i+1)
	}

	nodeID := func(name string) string {
		if nid, have := nids[name]; have {
			return nid
		}
		// A topic referenced by include/inherit but never
		// itself declared; give it an id anyway so the edge still
		// renders.
		nid := fmt.Sprintf("n%d", len(nids)+1)
		nids[name] = nid
		return nid
	}

	for _, name := range names {
		nid := nodeID(name)
		label := name
		topic := b.Topic(name)
		if topic != nil && opts.ShowPatterns {
			if n := countRedirects(topic); n > 0 {
				label = fmt.Sprintf("%s (%d redirect)", name, n)
			}
		}
		fmt.Fprintf(w, "  %s(\"%s\")\n", nid, label)

		if topic != nil && opts.InheritFill != "" && len(topic.Inherits) > 0 {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.InheritFill)
		}
	}

	for _, name := range names {
		topic := b.Topic(name)
		if topic == nil {
			continue
		}
		nid := nids[name]

		for _, included := range sortedKeys(topic.Includes) {
			fmt.Fprintf(w, "  %s -- includes --> %s\n", nid, nodeID(included))
		}
		for _, inherited := range sortedKeys(topic.Inherits) {
			fmt.Fprintf(w, "  %s -. inherits .-> %s\n", nid, nodeID(inherited))
		}
	}

	return nil
}

func countRedirects(topic *ast.Topic) int {
	n := 0
	for _, tr := range topic.Triggers {
		if tr.Redirect != "" {
			n++
		}
	}
	return n
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
