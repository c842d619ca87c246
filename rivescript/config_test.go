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
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	if !cfg.Strict {
		t.Fatal("expected strict mode by default")
	}
	if cfg.Depth != 50 {
		t.Fatalf("got depth %d", cfg.Depth)
	}
	if cfg.UTF8 || cfg.ForceCase {
		t.Fatal("expected UTF8/ForceCase off by default")
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("utf8: true\ndepth: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.UTF8 {
		t.Fatal("expected utf8 override to take effect")
	}
	if cfg.Depth != 10 {
		t.Fatalf("got depth %d", cfg.Depth)
	}
	if !cfg.Strict {
		t.Fatal("expected strict to keep its default since the file didn't set it")
	}
}

func TestUnicodePunctRegexpEmptyIsNil(t *testing.T) {
	cfg := NewConfig()
	if cfg.unicodePunctRegexp() != nil {
		t.Fatal("expected nil regexp for empty UnicodePunctuation")
	}
}

func TestUnicodePunctRegexpCompiles(t *testing.T) {
	cfg := NewConfig()
	cfg.UnicodePunctuation = `[.,!?]`
	re := cfg.unicodePunctRegexp()
	if re == nil {
		t.Fatal("expected a compiled regexp")
	}
	if !re.MatchString("!") {
		t.Fatal("expected the custom class to match '!'")
	}
}
