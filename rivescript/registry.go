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
	"fmt"
	"sort"
	"sync"
)

// Registry hosts more than one named RiveScript instance in a single
// process — one per MQTT topic namespace, one per WebSocket room,
// whatever the caller's multi-bot boundary is.
type Registry struct {
	mu  sync.RWMutex
	bot map[string]*RiveScript
}

// NewRegistry makes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bot: make(map[string]*RiveScript)}
}

// Add registers bot under name, replacing whatever was there.
func (r *Registry) Add(name string, bot *RiveScript) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bot[name] = bot
}

// Get returns the bot registered under name, or nil if there isn't
// one.
func (r *Registry) Get(name string) *RiveScript {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bot[name]
}

// Remove unregisters name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bot, name)
}

// Names returns every registered bot name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bot))
	for name := range r.bot {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reply looks up name's bot and runs Reply against it, failing with a
// descriptive error if name isn't registered.
func (r *Registry) Reply(name, userID, message string) (string, error) {
	bot := r.Get(name)
	if bot == nil {
		return "", fmt.Errorf("rivescript: no bot registered under %q", name)
	}
	return bot.Reply(userID, message)
}
