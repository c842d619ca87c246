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

// Package goja implements a RiveScript object-macro handler backed by
// Goja, a Go implementation of ECMAScript 5.1+. See
// https://github.com/dop251/goja.
//
// A loaded object's body is wrapped as a JavaScript function taking
// (rs, args) the way the original Java implementation's embedded
// object language exposes the calling bot and the call arguments; rs
// here is a small object carrying the calling user id.
package goja

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Handler is a MacroHandler (see package interpreters) that compiles
// and runs `> object NAME javascript` bodies with Goja.
type Handler struct {
	mu      sync.Mutex
	objects map[string]*goja.Program
}

// NewHandler makes an empty Handler.
func NewHandler() *Handler {
	return &Handler{
		objects: make(map[string]*goja.Program),
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function(rs, args) {\n%s\n})", src)
}

// Load compiles the object's code. A compile error is returned to the
// caller (which logs and treats the object as unindexed); Load never
// returns (false, nil) since any syntactically valid body is
// accepted.
func (h *Handler) Load(name string, codeLines []string) (bool, error) {
	src := wrapSrc(strings.Join(codeLines, "\n"))

	program, err := goja.Compile(name, src, true)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	h.objects[name] = program
	h.mu.Unlock()

	return true, nil
}

// Call runs the named object's function with args, in a fresh
// goja.Runtime per call so that concurrent Call invocations for
// distinct users never share interpreter state.
func (h *Handler) Call(ctx context.Context, userID string, name string, args []string) (string, error) {
	h.mu.Lock()
	program, have := h.objects[name]
	h.mu.Unlock()

	if !have {
		return "[ERR: Object Not Found]", nil
	}

	rt := goja.New()

	v, err := rt.RunProgram(program)
	if err != nil {
		return "", err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return "", errors.New("object " + name + " did not compile to a function")
	}

	rs := rt.NewObject()
	if err := rs.Set("id", userID); err != nil {
		return "", err
	}

	jsArgs := make([]interface{}, len(args))
	for i, a := range args {
		jsArgs[i] = a
	}

	result, err := fn(goja.Undefined(), rt.ToValue(rs), rt.ToValue(jsArgs))
	if err != nil {
		return "", err
	}

	return result.String(), nil
}
