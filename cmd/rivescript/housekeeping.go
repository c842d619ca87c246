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
	"log"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/rivescript-labs/rivescript/rivescript"
)

// Housekeeper periodically clears every user session on an
// operator-supplied schedule, e.g. a nightly reset. The engine itself
// has no notion of time or scheduling; this is ambient service
// housekeeping layered on top in cmd, not a core timer.
//
// cronexpr computes the next fire time of the schedule string, and
// that time drives a sleep-until-next-fire loop.
type Housekeeper struct {
	rs    *rivescript.RiveScript
	sched *cronexpr.Expression
}

// NewHousekeeper parses spec as a cronexpr schedule.
func NewHousekeeper(rs *rivescript.RiveScript, spec string) (*Housekeeper, error) {
	sched, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, err
	}
	return &Housekeeper{rs: rs, sched: sched}, nil
}

// Run sleeps until each scheduled fire time and clears every user
// session, until ctx is done.
func (h *Housekeeper) Run(ctx context.Context) {
	for {
		next := h.sched.Next(time.Now())
		if next.IsZero() {
			log.Printf("housekeeping: schedule has no further fire times, stopping")
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			log.Printf("housekeeping: clearing all sessions")
			h.rs.ClearAllUservars()
		}
	}
}
