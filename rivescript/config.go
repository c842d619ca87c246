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
	"io/ioutil"
	"regexp"

	"gopkg.in/yaml.v2"
)

// Config holds the per-bot knobs of spec.md §6. The zero value is not
// ready to use; build one with NewConfig.
type Config struct {
	// Strict makes the parser abort on the first structural violation
	// instead of skipping the offending line with a warning.
	Strict bool `yaml:"strict"`

	// UTF8 switches normalization and pattern compilation to
	// script-aware case folding and punctuation stripping.
	UTF8 bool `yaml:"utf8"`

	// ForceCase lowers trigger patterns at parse time.
	ForceCase bool `yaml:"force_case"`

	// Depth bounds both inheritance-closure recursion (sorter) and
	// redirect recursion (engine), per spec.md §5.
	Depth int `yaml:"depth"`

	// UnicodePunctuation overrides the punctuation class stripped in
	// UTF8 mode; empty keeps the default [.,!?;:].
	UnicodePunctuation string `yaml:"unicode_punctuation"`

	// ErrorMessages optionally remaps the three engine-surfaced reply
	// errors ("ERR: No Reply Matched", "ERR: No Reply Found", "ERR:
	// Deep Recursion Detected!") to bot-specific text.
	ErrorMessages map[string]string `yaml:"error_messages,omitempty"`

	// OnDeepRecursion is stored with the config only: it is not passed
	// to the reply engine, and Reply never calls it when a reply hits
	// Depth.
	OnDeepRecursion func(kind string) `yaml:"-"`
}

// NewConfig returns a Config with spec.md §6's documented defaults:
// strict parsing, ASCII normalization, no force-case, depth 50.
func NewConfig() *Config {
	return &Config{
		Strict: true,
		Depth:  50,
	}
}

// LoadConfigFile reads a YAML-encoded Config from path, starting from
// NewConfig's defaults so a partial file only overrides what it sets.
func LoadConfigFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) unicodePunctRegexp() *regexp.Regexp {
	if c.UnicodePunctuation == "" {
		return nil
	}
	re, err := regexp.Compile(c.UnicodePunctuation)
	if err != nil {
		return nil
	}
	return re
}
