/*
 *    Copyright 2021 chenquan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package session persists the state of a non-clean session across a
// CONNECT/DISCONNECT cycle (spec §4.5): the fields a reconnecting client
// with the same client id is entitled to have restored, plus the stamp the
// session manager's oldest-first eviction sweep orders by.
package session

import (
	"context"
	"time"
)

// StoredSession is what the session manager persists for a non-clean
// session when it goes offline, and restores when the same client id
// reconnects (spec §4.5 "restore").
type StoredSession struct {
	ClientId     string
	WillTopic    string
	WillMessage  []byte
	WillQos      byte
	WillRetain   bool
	HasWill      bool
	StoredAt     time.Time
}

// Store is the persistence boundary for non-clean sessions. Implementations
// must be safe for concurrent use.
type Store interface {
	// Save upserts sess, refreshing its StoredAt stamp.
	Save(ctx context.Context, sess *StoredSession) error
	// Load returns the stored session for clientId, or (nil, nil) if none
	// exists.
	Load(ctx context.Context, clientId string) (*StoredSession, error)
	// Delete removes any stored session for clientId. Deleting an absent
	// entry is not an error.
	Delete(ctx context.Context, clientId string) error
	// Oldest returns the clientId of the least-recently-stored session,
	// for the session manager's overflow eviction (spec §4.5). Returns
	// ("", nil) when the store is empty.
	Oldest(ctx context.Context) (string, error)
	// Len reports the number of stored sessions.
	Len(ctx context.Context) (int, error)
}
