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

package session

import (
	"context"
	"sync"
)

// memoryStore bounds storage to the process's lifetime; the default for a
// constrained device with no durable storage attached.
type memoryStore struct {
	mu    sync.Mutex
	byId  map[string]*StoredSession
}

func NewMemoryStore() Store {
	return &memoryStore{byId: make(map[string]*StoredSession)}
}

func (m *memoryStore) Save(_ context.Context, sess *StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.byId[sess.ClientId] = &cp
	return nil
}

func (m *memoryStore) Load(_ context.Context, clientId string) (*StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.byId[clientId]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (m *memoryStore) Delete(_ context.Context, clientId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byId, clientId)
	return nil
}

func (m *memoryStore) Oldest(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldestId string
	var set bool
	for id, sess := range m.byId {
		if !set || sess.StoredAt.Before(m.byId[oldestId].StoredAt) {
			oldestId = id
			set = true
		}
	}
	return oldestId, nil
}

func (m *memoryStore) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byId), nil
}
