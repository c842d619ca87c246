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

func TestRenderBrainHTMLIncludesTopicAndTrigger(t *testing.T) {
	b := brain.New(nil)
	root := &ast.Root{
		Topics: map[string]*ast.Topic{
			ast.DefaultTopic: {
				Triggers: []*ast.Trigger{
					{Pattern: "hello bot", Replies: []string{"Hello, *human*!"}},
				},
				Includes: map[string]bool{},
				Inherits: map[string]bool{},
			},
		},
	}
	if err := b.Merge(root); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RenderBrainHTML(b, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, `id="random"`) {
		t.Fatalf("expected topic heading, got %s", out)
	}
	if !strings.Contains(out, "hello bot") {
		t.Fatalf("expected trigger pattern, got %s", out)
	}
	if !strings.Contains(out, "<em>human</em>") {
		t.Fatalf("expected markdown-rendered reply, got %s", out)
	}
}

func TestRenderBrainHTMLIncludesAndInherits(t *testing.T) {
	b := brain.New(nil)
	root := &ast.Root{
		Topics: map[string]*ast.Topic{
			ast.DefaultTopic: {
				Triggers: []*ast.Trigger{{Pattern: "hi", Replies: []string{"hi"}}},
				Includes: map[string]bool{"greetings": true},
				Inherits: map[string]bool{"fallback": true},
			},
		},
	}
	if err := b.Merge(root); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RenderBrainHTML(b, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "includes: greetings") {
		t.Fatalf("expected includes line, got %s", out)
	}
	if !strings.Contains(out, "inherits: fallback") {
		t.Fatalf("expected inherits line, got %s", out)
	}
}
