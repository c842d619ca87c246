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
	"bytes"
	"strings"
	"testing"

	"github.com/rivescript-labs/rivescript/ast"
	"github.com/rivescript-labs/rivescript/brain"
)

func TestRenderTopicGraphIncludesAndInherits(t *testing.T) {
	b := brain.New(nil)
	root := &ast.Root{
		Topics: map[string]*ast.Topic{
			ast.DefaultTopic: {
				Triggers: []*ast.Trigger{
					{Pattern: "help", Redirect: "support"},
				},
				Includes: map[string]bool{"greetings": true},
				Inherits: map[string]bool{"fallback": true},
			},
			"greetings": {Triggers: []*ast.Trigger{{Pattern: "hi", Replies: []string{"hi"}}}},
			"fallback":  {Triggers: []*ast.Trigger{{Pattern: "*", Replies: []string{"huh?"}}}},
		},
	}
	if err := b.Merge(root); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RenderTopicGraph(b, &buf, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "graph TB") {
		t.Fatalf("expected a Mermaid graph header, got %s", out)
	}
	if !strings.Contains(out, "includes --> ") {
		t.Fatalf("expected an includes edge, got %s", out)
	}
	if !strings.Contains(out, "inherits .-> ") {
		t.Fatalf("expected an inherits edge, got %s", out)
	}
	if !strings.Contains(out, "(1 redirect)") {
		t.Fatalf("expected random's node label to show its redirect count, got %s", out)
	}
}

func TestRenderTopicGraphUnknownOptsDefaults(t *testing.T) {
	b := brain.New(nil)
	root := &ast.Root{Topics: map[string]*ast.Topic{
		ast.DefaultTopic: {Triggers: []*ast.Trigger{{Pattern: "hi", Replies: []string{"hi"}}}},
	}}
	if err := b.Merge(root); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RenderTopicGraph(b, &buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `n1("random")`) {
		t.Fatalf("expected a plain node for random, got %s", buf.String())
	}
}
