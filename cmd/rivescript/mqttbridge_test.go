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

package main

import "testing"

func TestBridgeOutTopic(t *testing.T) {
	out, err := bridgeOutTopic("rivescript/+/in")
	if err != nil {
		t.Fatal(err)
	}
	if out != "rivescript/+/out" {
		t.Fatalf("got %q", out)
	}
}

func TestBridgeOutTopicRejectsNonInSuffix(t *testing.T) {
	if _, err := bridgeOutTopic("rivescript/+/chat"); err == nil {
		t.Fatal("expected an error for a topic not ending in /in")
	}
}

func TestBridgeUserID(t *testing.T) {
	id := bridgeUserID("rivescript/+/in", "rivescript/carl/in")
	if id != "carl" {
		t.Fatalf("got %q", id)
	}
}

func TestBridgeUserIDMismatchedShape(t *testing.T) {
	if id := bridgeUserID("rivescript/+/in", "other/carl/in"); id != "" {
		t.Fatalf("expected no match, got %q", id)
	}
	if id := bridgeUserID("rivescript/+/in", "rivescript/carl/extra/in"); id != "" {
		t.Fatalf("expected no match for differing segment count, got %q", id)
	}
}
