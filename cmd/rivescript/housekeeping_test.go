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

import (
	"context"
	"testing"
	"time"

	"github.com/rivescript-labs/rivescript/rivescript"
)

func TestNewHousekeeperRejectsBadSchedule(t *testing.T) {
	rs := rivescript.New(nil)
	if _, err := NewHousekeeper(rs, "not a cron spec"); err == nil {
		t.Fatal("expected an error for a malformed cron expression")
	}
}

func TestHousekeeperRunClearsSessionsOnSchedule(t *testing.T) {
	rs := rivescript.New(nil)
	rs.SetUservar("carl", "mood", "happy")

	// Every second, so the test doesn't have to wait long.
	hk, err := NewHousekeeper(rs, "* * * * * * *")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	hk.Run(ctx)

	if _, ok := rs.GetUservar("carl", "mood"); ok {
		t.Fatal("expected housekeeping to have cleared carl's session")
	}
}
