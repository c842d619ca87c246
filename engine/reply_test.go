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
	"testing"

	"github.com/rivescript-labs/rivescript/ast"
	"github.com/rivescript-labs/rivescript/brain"
	"github.com/rivescript-labs/rivescript/session"
	"github.com/rivescript-labs/rivescript/sorter"
)

// newTestBrain builds a Brain directly from ast data, bypassing the
// parser, so each test only has to describe the triggers it cares
// about.
func newTestBrain(topics map[string]*ast.Topic) *brain.Brain {
	b := brain.New(nil)
	root := &ast.Root{Topics: topics}
	if err := b.Merge(root); err != nil {
		panic(err)
	}
	return b
}

func trig(pattern string, replies ...string) *ast.Trigger {
	return &ast.Trigger{Pattern: pattern, Replies: replies}
}

func buildBuffer(b *brain.Brain) *sorter.Buffer {
	return sorter.Build(b, b.TopicNames(), b.Sub, b.Person, sorter.DefaultDepth)
}

func TestReplyGreeting(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{
				trig("hello bot", "Hello, human!"),
			},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	out, err := Reply(b, buf, sessions, DefaultConfig(), "alice", "Hello Bot!")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hello, human!" {
		t.Fatalf("got %q", out)
	}
}

func TestReplyWeightedSelectionOnlyPicksListedReplies(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{
				trig("hi", "{weight=90}Hi there!", "{weight=10}Yo."),
			},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		out, err := Reply(b, buf, sessions, DefaultConfig(), "bob", "hi")
		if err != nil {
			t.Fatal(err)
		}
		if out != "Hi there!" && out != "Yo." {
			t.Fatalf("unexpected reply %q leaked a weight tag or garbage", out)
		}
		seen[out] = true
	}
	_ = seen
}

func TestReplyKnockKnockPrevious(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{
				trig("knock knock", "Who is there?"),
				{Pattern: "*", Previous: "who is there", Replies: []string{"<star> who?"}},
			},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	out, err := Reply(b, buf, sessions, DefaultConfig(), "carl", "knock knock")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Who is there?" {
		t.Fatalf("got %q", out)
	}

	out, err = Reply(b, buf, sessions, DefaultConfig(), "carl", "Banana")
	if err != nil {
		t.Fatal(err)
	}
	if out != "banana who?" {
		t.Fatalf("got %q", out)
	}
}

func TestReplyArrayInReply(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{
				trig("pick a color", "I like (@colors)."),
			},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	root := &ast.Root{Begin: &ast.Begin{Array: map[string][]string{"colors": {"red", "blue"}}}}
	if err := b.Merge(root); err != nil {
		t.Fatal(err)
	}
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	out, err := Reply(b, buf, sessions, DefaultConfig(), "dana", "pick a color")
	if err != nil {
		t.Fatal(err)
	}
	if out != "I like red." && out != "I like blue." {
		t.Fatalf("got %q", out)
	}
}

func TestReplyCondition(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{
				{
					Pattern:    "how am i",
					Conditions: []string{"<get mood> == happy => You're happy!"},
					Replies:    []string{"Not sure."},
				},
			},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()
	sessions.Init("erin")
	sessions.Set("erin", map[string]string{"mood": "happy"})

	out, err := Reply(b, buf, sessions, DefaultConfig(), "erin", "how am i")
	if err != nil {
		t.Fatal(err)
	}
	if out != "You're happy!" {
		t.Fatalf("got %q", out)
	}
}

func TestReplyRedirectRecursionBound(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{
				{Pattern: "loop", Redirect: "loop"},
			},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	cfg := DefaultConfig()
	cfg.Depth = 5
	out, err := Reply(b, buf, sessions, cfg, "frank", "loop")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ERR: Deep Recursion Detected!" {
		t.Fatalf("got %q", out)
	}
}

func TestReplyNoMatchReportsError(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{trig("hello", "hi")},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	out, err := Reply(b, buf, sessions, DefaultConfig(), "gina", "asdkjaslkdj")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ERR: No Reply Matched" {
		t.Fatalf("got %q", out)
	}
}

func TestReplyBeginBlockOk(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{trig("hello", "Hi!")},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
		ast.BeginTopic: {
			Triggers: []*ast.Trigger{trig("request", "{ok}")},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	out, err := Reply(b, buf, sessions, DefaultConfig(), "hank", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hi!" {
		t.Fatalf("got %q", out)
	}
}

func TestReplyBeginBlockCanOverrideEntirely(t *testing.T) {
	topics := map[string]*ast.Topic{
		ast.DefaultTopic: {
			Triggers: []*ast.Trigger{trig("hello", "Hi!")},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
		ast.BeginTopic: {
			Triggers: []*ast.Trigger{trig("request", "The bot is down for maintenance.")},
			Includes: map[string]bool{},
			Inherits: map[string]bool{},
		},
	}
	b := newTestBrain(topics)
	buf := buildBuffer(b)
	sessions := session.NewMemoryManager()

	out, err := Reply(b, buf, sessions, DefaultConfig(), "iris", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if out != "The bot is down for maintenance." {
		t.Fatalf("got %q", out)
	}
}
