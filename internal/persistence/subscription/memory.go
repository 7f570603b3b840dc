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

package subscription

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu  sync.Mutex
	byId map[string][]Entry
}

func NewMemoryStore() Store {
	return &memoryStore{byId: make(map[string][]Entry)}
}

func (m *memoryStore) Replace(_ context.Context, clientId string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	m.byId[clientId] = cp
	return nil
}

func (m *memoryStore) Load(_ context.Context, clientId string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.byId[clientId]
	if !ok {
		return nil, nil
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return cp, nil
}

func (m *memoryStore) Delete(_ context.Context, clientId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byId, clientId)
	return nil
}
