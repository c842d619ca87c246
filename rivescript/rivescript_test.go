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

package rivescript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rivescript-labs/rivescript/session"
)

const greetingSource = `
+ hello bot
- Hello, human!

+ my name is *
- <set name=<star>>Nice to meet you, <get name>!

+ what is my name
- Your name is <get name>.
`

func TestStreamAndReply(t *testing.T) {
	rs := New(nil)
	if _, err := rs.Stream("greeting.rive", greetingSource); err != nil {
		t.Fatal(err)
	}
	rs.SortReplies()

	out, err := rs.Reply("alice", "Hello bot!")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hello, human!" {
		t.Fatalf("got %q", out)
	}

	out, err = rs.Reply("alice", "my name is Alice")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Nice to meet you, alice!" {
		t.Fatalf("got %q", out)
	}

	out, err = rs.Reply("alice", "what is my name")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Your name is alice." {
		t.Fatalf("got %q", out)
	}
}

func TestLoadDirectorySortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.rive"), "+ second\n- two\n")
	writeFile(t, filepath.Join(dir, "a.rive"), "+ first\n- one\n")

	rs := New(nil)
	if _, err := rs.LoadDirectory(dir); err != nil {
		t.Fatal(err)
	}
	rs.SortReplies()

	out, err := rs.Reply("bob", "first")
	if err != nil || out != "one" {
		t.Fatalf("got %q, err=%v", out, err)
	}
	out, err = rs.Reply("bob", "second")
	if err != nil || out != "two" {
		t.Fatalf("got %q, err=%v", out, err)
	}
}

func TestGlobalAndVariableSetters(t *testing.T) {
	rs := New(nil)
	rs.SetGlobal("debug", "true")
	if rs.GetGlobal("debug") != "true" {
		t.Fatal("global not set")
	}
	rs.SetVariable("name", "Aiden")
	if rs.GetVariable("name") != "Aiden" {
		t.Fatal("variable not set")
	}
	if rs.GetGlobal("nope") != "undefined" {
		t.Fatal("expected undefined default")
	}
}

func TestUservarLifecycle(t *testing.T) {
	rs := New(nil)
	rs.SetUservar("carl", "mood", "happy")
	v, ok := rs.GetUservar("carl", "mood")
	if !ok || v != "happy" {
		t.Fatalf("got %q, %v", v, ok)
	}

	rs.FreezeUservars("carl")
	rs.SetUservar("carl", "mood", "sad")
	rs.ThawUservars("carl", session.Thaw)
	v, _ = rs.GetUservar("carl", "mood")
	if v != "happy" {
		t.Fatalf("expected thaw to restore happy, got %q", v)
	}

	rs.ClearUservars("carl")
	if _, ok := rs.GetUservar("carl", "mood"); ok {
		t.Fatal("expected cleared uservars")
	}
}

func TestArraySubstitutionSetters(t *testing.T) {
	rs := New(nil)
	rs.SetArray("colors", []string{"red", "blue"})
	if _, err := rs.Stream("x.rive", "+ pick\n- I like (@colors).\n"); err != nil {
		t.Fatal(err)
	}
	rs.SortReplies()

	out, err := rs.Reply("dana", "pick")
	if err != nil {
		t.Fatal(err)
	}
	if out != "I like red." && out != "I like blue." {
		t.Fatalf("got %q", out)
	}
}

func TestSubstitutionAppliesBeforeMatch(t *testing.T) {
	rs := New(nil)
	rs.SetSubstitution("what's", "what is")
	if _, err := rs.Stream("x.rive", "+ what is up\n- Nothing much!\n"); err != nil {
		t.Fatal(err)
	}
	rs.SortReplies()

	out, err := rs.Reply("erin", "what's up")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Nothing much!" {
		t.Fatalf("got %q", out)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
