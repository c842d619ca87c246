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

import "testing"

func newBot(t *testing.T, trigger, reply string) *RiveScript {
	t.Helper()
	rs := New(nil)
	if _, err := rs.Stream("x.rive", "+ "+trigger+"\n- "+reply+"\n"); err != nil {
		t.Fatal(err)
	}
	rs.SortReplies()
	return rs
}

func TestRegistryAddGetReply(t *testing.T) {
	r := NewRegistry()
	r.Add("supportbot", newBot(t, "help", "How can I help?"))
	r.Add("salesbot", newBot(t, "help", "Let me get a sales rep."))

	out, err := r.Reply("supportbot", "u1", "help")
	if err != nil {
		t.Fatal(err)
	}
	if out != "How can I help?" {
		t.Fatalf("got %q", out)
	}

	out, err = r.Reply("salesbot", "u1", "help")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Let me get a sales rep." {
		t.Fatalf("got %q", out)
	}
}

func TestRegistryUnknownNameErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Reply("nope", "u1", "hi"); err == nil {
		t.Fatal("expected an error for an unregistered bot")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Add("zeta", newBot(t, "hi", "hi"))
	r.Add("alpha", newBot(t, "hi", "hi"))

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Fatalf("got %v", names)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Add("bot", newBot(t, "hi", "hi"))
	r.Remove("bot")
	if r.Get("bot") != nil {
		t.Fatal("expected bot to be removed")
	}
}
