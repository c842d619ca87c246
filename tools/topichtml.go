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

// Package tools holds auxiliary, non-core utilities: an HTML dump and
// a Mermaid topic graph of a loaded brain for documentation/debugging.
package tools

import (
	"fmt"
	"html"
	"io"
	"sort"

	md "github.com/russross/blackfriday/v2"

	"github.com/rivescript-labs/rivescript/ast"
	"github.com/rivescript-labs/rivescript/brain"
)

// RenderBrainHTML writes an HTML document describing every topic in
// b: its includes/inherits, and each trigger's pattern, %previous,
// conditions, redirect, and replies. Reply text is run through
// blackfriday so a script author's inline markdown (most commonly
// *emphasis* or a bare URL) renders instead of showing as literal
// asterisks.
func RenderBrainHTML(b *brain.Brain, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<!DOCTYPE html>`)
	f(`<meta charset="utf-8">`)
	f(`<html><head><title>RiveScript brain</title></head><body>`)

	names := b.TopicNames()
	sort.Strings(names)

	for _, name := range names {
		topic := b.Topic(name)
		if topic == nil {
			continue
		}
		renderTopic(f, name, topic)
	}

	f(`</body></html>`)
	return nil
}

func renderTopic(f func(string, ...interface{}), name string, topic *ast.Topic) {
	f(`<div class="topic"><h2 id="%s">%s</h2>`, html.EscapeString(name), html.EscapeString(name))

	if len(topic.Includes) > 0 {
		f(`<div class="includes">includes: %s</div>`, html.EscapeString(joinSortedKeys(topic.Includes)))
	}
	if len(topic.Inherits) > 0 {
		f(`<div class="inherits">inherits: %s</div>`, html.EscapeString(joinSortedKeys(topic.Inherits)))
	}

	f(`<table class="triggers">`)
	for _, tr := range topic.Triggers {
		renderTrigger(f, tr)
	}
	f(`</table></div>`)
}

func renderTrigger(f func(string, ...interface{}), tr *ast.Trigger) {
	f(`<tr class="trigger"><td><code>%s</code></td><td>`, html.EscapeString(tr.Pattern))

	if tr.Previous != "" {
		f(`<div class="previous">%%previous <code>%s</code></div>`, html.EscapeString(tr.Previous))
	}
	for _, cond := range tr.Conditions {
		f(`<div class="condition"><code>%s</code></div>`, html.EscapeString(cond))
	}
	if tr.Redirect != "" {
		f(`<div class="redirect">@ <code>%s</code></div>`, html.EscapeString(tr.Redirect))
	}
	for _, reply := range tr.Replies {
		f(`<div class="reply">%s</div>`, md.Run([]byte(reply)))
	}

	f(`</td></tr>`)
}

func joinSortedKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}
