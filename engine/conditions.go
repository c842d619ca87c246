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
	"regexp"
	"strconv"
	"strings"
)

// conditionPattern splits "LEFT OP RIGHT" into its three parts. The
// operator alternatives are ordered longest-first so <= and >= win
// over their single-character prefixes.
var conditionPattern = regexp.MustCompile(`^(.*?)\s+(==|!=|<>|<=|>=|<|>|eq|ne)\s+(.*)$`)

// evalCondition implements spec.md §4.5 step 6 for one `* LEFT OP
// RIGHT => REPLY` line. It reports whether the condition held and, if
// so, the (not yet tag-expanded) reply text.
func (s *state) evalCondition(raw string, stars, botstars []string) (bool, string) {
	idx := strings.Index(raw, "=>")
	if idx < 0 {
		return false, ""
	}
	clause := strings.TrimSpace(raw[:idx])
	reply := strings.TrimSpace(raw[idx+2:])

	m := conditionPattern.FindStringSubmatch(clause)
	if m == nil {
		return false, ""
	}

	left := s.expandTags(strings.TrimSpace(m[1]), stars, botstars)
	op := m[2]
	right := s.expandTags(strings.TrimSpace(m[3]), stars, botstars)

	if left == "" {
		left = "undefined"
	}
	if right == "" {
		right = "undefined"
	}

	if evalOperator(op, left, right) {
		return true, reply
	}
	return false, ""
}

func evalOperator(op, left, right string) bool {
	switch op {
	case "==", "eq":
		return left == right
	case "!=", "ne", "<>":
		return left != right
	case "<", "<=", ">", ">=":
		li, lerr := strconv.Atoi(left)
		ri, rerr := strconv.Atoi(right)
		if lerr != nil || rerr != nil {
			return false
		}
		switch op {
		case "<":
			return li < ri
		case "<=":
			return li <= ri
		case ">":
			return li > ri
		case ">=":
			return li >= ri
		}
	}
	return false
}
