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

import "testing"

func TestEvalConditionEquality(t *testing.T) {
	s := newTestState(t)
	s.sessions.Set(s.userID, map[string]string{"mood": "happy"})

	ok, reply := s.evalCondition("<get mood> == happy => Good to hear!", nil, nil)
	if !ok || reply != "Good to hear!" {
		t.Fatalf("got ok=%v reply=%q", ok, reply)
	}
}

func TestEvalConditionInequality(t *testing.T) {
	s := newTestState(t)
	s.sessions.Set(s.userID, map[string]string{"mood": "sad"})

	ok, _ := s.evalCondition("<get mood> != happy => Not happy.", nil, nil)
	if !ok {
		t.Fatal("expected condition to hold")
	}
}

func TestEvalConditionNumericComparison(t *testing.T) {
	s := newTestState(t)
	s.sessions.Set(s.userID, map[string]string{"age": "25"})

	ok, reply := s.evalCondition("<get age> >= 18 => You're an adult.", nil, nil)
	if !ok || reply != "You're an adult." {
		t.Fatalf("got ok=%v reply=%q", ok, reply)
	}

	ok2, _ := s.evalCondition("<get age> < 18 => You're a minor.", nil, nil)
	if ok2 {
		t.Fatal("expected numeric condition to fail")
	}
}

func TestEvalConditionNonNumericComparisonFails(t *testing.T) {
	s := newTestState(t)
	s.sessions.Set(s.userID, map[string]string{"mood": "happy"})

	ok, _ := s.evalCondition("<get mood> > 18 => Shouldn't happen.", nil, nil)
	if ok {
		t.Fatal("expected non-numeric operand comparison to fail, not panic or match")
	}
}

func TestEvalConditionUnsetVariableIsUndefined(t *testing.T) {
	s := newTestState(t)

	ok, reply := s.evalCondition("<get nope> == undefined => Never set.", nil, nil)
	if !ok || reply != "Never set." {
		t.Fatalf("got ok=%v reply=%q", ok, reply)
	}
}

func TestEvalConditionMalformedClauseDoesNotMatch(t *testing.T) {
	s := newTestState(t)

	ok, _ := s.evalCondition("this is not a condition", nil, nil)
	if ok {
		t.Fatal("expected malformed clause to report false")
	}
}

func TestEvalOperatorDirectly(t *testing.T) {
	cases := []struct {
		op, left, right string
		want            bool
	}{
		{"==", "a", "a", true},
		{"eq", "a", "b", false},
		{"!=", "a", "b", true},
		{"ne", "a", "a", false},
		{"<>", "a", "b", true},
		{"<", "1", "2", true},
		{"<=", "2", "2", true},
		{">", "3", "2", true},
		{">=", "2", "3", false},
	}
	for _, c := range cases {
		if got := evalOperator(c.op, c.left, c.right); got != c.want {
			t.Errorf("evalOperator(%q, %q, %q) = %v, want %v", c.op, c.left, c.right, got, c.want)
		}
	}
}
