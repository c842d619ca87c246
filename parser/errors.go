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

package parser

import "strconv"

// ParseError is a structural or syntactic problem found while parsing
// a source file. In strict mode a ParseError aborts the parse; in
// non-strict mode it is collected as a warning and the offending line
// is skipped.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	where := e.File
	if where == "" {
		where = "<input>"
	}
	return where + ":" + strconv.Itoa(e.Line) + ": " + e.Message
}

func newError(file string, line int, message string) *ParseError {
	return &ParseError{File: file, Line: line, Message: message}
}
