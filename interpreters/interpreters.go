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

// Package interpreters defines the macro handler contract (spec.md
// §6) that lets RiveScript's `> object` blocks be written in a host
// language, and a small registry for looking handlers up by name.
package interpreters

import (
	"context"

	"github.com/rivescript-labs/rivescript/interpreters/goja"
	"github.com/rivescript-labs/rivescript/interpreters/noop"
)

// MacroHandler implements the object-macro contract of spec.md §6.
//
// Load is called once per object block at brain-merge time; a false
// return means the handler declines the block (its code will not be
// indexed, and a warning is logged by the caller). Call is invoked
// during tag expansion for `<call>name arg1 arg2</call>`; an error
// return becomes `[ERR: ...]` text in the caller.
//
// Call takes the calling user id explicitly rather than relying on a
// thread-local, per spec.md §5/§9: "current user" must be observable
// by macro handlers invoked from a single reply invocation and must
// not depend on a process-wide singleton that can't distinguish
// parallel callers.
type MacroHandler interface {
	Load(name string, codeLines []string) (bool, error)
	Call(ctx context.Context, userID string, name string, args []string) (string, error)
}

// Registry maps a language name (as declared in `> object NAME LANG`)
// to the handler responsible for it.
type Registry map[string]MacroHandler

// Standard returns the registry this module ships by default: a
// Goja-backed "javascript" handler plus a few common aliases, and a
// noop handler for anything unregistered that still wants a
// non-nil fallback.
func Standard() Registry {
	r := make(Registry, 4)

	js := goja.NewHandler()
	r["javascript"] = js
	r["js"] = js
	r["ecmascript"] = js

	r["noop"] = noop.NewHandler()

	return r
}
