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

package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.Und)
)

// Lower performs script-aware lowercasing in UTF-8 mode, falling back
// to ASCII strings.ToLower otherwise so ASCII-only corpora keep the
// exact behavior spec.md §9 requires when utf8 is off.
func Lower(s string, utf8Mode bool) string {
	if utf8Mode {
		return lowerCaser.String(s)
	}
	return strings.ToLower(s)
}

// TitleWord title-cases a single word with script-aware rules in
// UTF-8 mode; used by {formal}.
func TitleWord(s string, utf8Mode bool) string {
	if utf8Mode {
		return titleCaser.String(s)
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
