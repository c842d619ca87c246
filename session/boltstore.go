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

package session

import (
	"time"

	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v2"
)

var sessionsBucket = []byte("sessions")
var frozenBucket = []byte("frozen")

// record is the on-disk form of a Session, YAML-encoded into a bolt
// value.
type record struct {
	Variables map[string]string `yaml:"variables"`
	LastMatch string            `yaml:"lastMatch"`
	Input     [HistorySize]string `yaml:"input"`
	Reply     [HistorySize]string `yaml:"reply"`
}

func toRecord(s *Session) *record {
	return &record{
		Variables: s.Variables,
		LastMatch: s.LastMatch,
		Input:     s.Input.slots,
		Reply:     s.Reply.slots,
	}
}

func fromRecord(r *record) *Session {
	return &Session{
		Variables: r.Variables,
		LastMatch: r.LastMatch,
		Input:     &History{slots: r.Input},
		Reply:     &History{slots: r.Reply},
	}
}

// BoltManager is a Manager backed by a bbolt database file, for
// sessions that must survive a process restart. It wraps an
// in-memory MemoryManager as a read cache and write-alongside buffer,
// mirroring cmd/mcrew/storage.go's Storage: every mutating call
// updates memory first, then persists synchronously.
type BoltManager struct {
	mem *MemoryManager
	db  *bbolt.DB
}

// OpenBoltManager opens (creating if necessary) a bbolt database at
// path and loads any previously persisted sessions into memory.
func OpenBoltManager(path string) (*BoltManager, error) {
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sessionsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(frozenBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	bm := &BoltManager{mem: NewMemoryManager(), db: db}

	if err := db.View(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(sessionsBucket).ForEach(func(user, raw []byte) error {
			var r record
			if err := yaml.Unmarshal(raw, &r); err != nil {
				return err
			}
			bm.mem.sessions[string(user)] = fromRecord(&r)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(frozenBucket).ForEach(func(user, raw []byte) error {
			var r record
			if err := yaml.Unmarshal(raw, &r); err != nil {
				return err
			}
			bm.mem.frozen[string(user)] = fromRecord(&r)
			return nil
		})
	}); err != nil {
		db.Close()
		return nil, err
	}

	return bm, nil
}

// Close releases the underlying bbolt database handle.
func (b *BoltManager) Close() error {
	return b.db.Close()
}

func (b *BoltManager) persist(user string) error {
	b.mem.mu.RLock()
	s, have := b.mem.sessions[user]
	b.mem.mu.RUnlock()
	if !have {
		return nil
	}
	raw, err := yaml.Marshal(toRecord(s))
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(user), raw)
	})
}

func (b *BoltManager) Init(user string) {
	b.mem.Init(user)
	b.persist(user)
}

func (b *BoltManager) Set(user string, vars map[string]string) {
	b.mem.Set(user, vars)
	b.persist(user)
}

func (b *BoltManager) Get(user, name string) (string, bool) { return b.mem.Get(user, name) }
func (b *BoltManager) GetAny(user string) map[string]string { return b.mem.GetAny(user) }
func (b *BoltManager) GetAll() map[string]map[string]string { return b.mem.GetAll() }

func (b *BoltManager) AddHistory(user, input, reply string) {
	b.mem.AddHistory(user, input, reply)
	b.persist(user)
}

func (b *BoltManager) SetLastMatch(user, trigger string) {
	b.mem.SetLastMatch(user, trigger)
	b.persist(user)
}

func (b *BoltManager) GetLastMatch(user string) string { return b.mem.GetLastMatch(user) }

func (b *BoltManager) GetHistory(user string) (input, reply *History) {
	return b.mem.GetHistory(user)
}

func (b *BoltManager) Clear(user string) {
	b.mem.Clear(user)
	b.db.Update(func(tx *bbolt.Tx) error {
		tx.Bucket(sessionsBucket).Delete([]byte(user))
		tx.Bucket(frozenBucket).Delete([]byte(user))
		return nil
	})
}

func (b *BoltManager) ClearAll() {
	b.mem.ClearAll()
	b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(sessionsBucket); err != nil {
			return err
		}
		if err := tx.DeleteBucket(frozenBucket); err != nil {
			return err
		}
		if _, err := tx.CreateBucket(sessionsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(frozenBucket)
		return err
	})
}

func (b *BoltManager) Freeze(user string) {
	b.mem.Freeze(user)
	b.mem.mu.RLock()
	snap, have := b.mem.frozen[user]
	b.mem.mu.RUnlock()
	if !have {
		return
	}
	raw, err := yaml.Marshal(toRecord(snap))
	if err != nil {
		return
	}
	b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(frozenBucket).Put([]byte(user), raw)
	})
}

func (b *BoltManager) Thaw(user string, action ThawAction) {
	b.mem.Thaw(user, action)
	b.persist(user)
	if action != Keep {
		b.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(frozenBucket).Delete([]byte(user))
		})
	}
}
