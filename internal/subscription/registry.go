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

// Package subscription is the per-session subscription registry (spec
// §4.3): the set of topic filters one session currently holds, each with
// its most-recently-granted QoS, bounded so that a single misbehaving
// client cannot grow the broker's routing table without limit.
package subscription

import (
	"sync"

	"github.com/yunqi/tideway/internal/topic"
)

// Registry holds one session's filter -> granted-QoS table.
type Registry struct {
	mu      sync.RWMutex
	max     int
	entries map[string]byte
}

func NewRegistry(max int) *Registry {
	return &Registry{max: max, entries: make(map[string]byte)}
}

// Add validates filter and inserts or updates it at qos. It reports
// whether the filter was accepted: false means either the filter is
// malformed (spec §4.3's ValidFilter) or, for a brand-new filter, the
// registry is already at its MaxSubscriptions bound (spec §8 property 4).
// A re-subscribe to an already-held filter always succeeds, even at the
// bound, since it replaces rather than grows the set.
func (r *Registry) Add(filter string, qos byte) bool {
	if !topic.ValidFilter(filter) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[filter]; !exists && len(r.entries) >= r.max {
		return false
	}
	r.entries[filter] = qos
	return true
}

// Remove deletes filter, reporting whether it was present.
func (r *Registry) Remove(filter string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[filter]; !ok {
		return false
	}
	delete(r.entries, filter)
	return true
}

// Clear empties the registry, for a clean-session activation that discards
// transferred or restored subscriptions (spec §4.5).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]byte)
}

// Matching returns every filter in the registry matching name, together
// with the QoS granted to it, for the router's fan-out (spec §4.2, §4.4).
func (r *Registry) Matching(name string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for filter, qos := range r.entries {
		if topic.Match(filter, name) {
			out = append(out, Entry{Filter: filter, Qos: qos})
		}
	}
	return out
}

// MaxQos returns the highest QoS among filters in the registry matching
// name, and whether at least one matched, for "onlyonce" delivery mode
// (SPEC_FULL supplement).
func (r *Registry) MaxQos(name string) (byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best byte
	var found bool
	for filter, qos := range r.entries {
		if topic.Match(filter, name) {
			if !found || qos > best {
				best = qos
			}
			found = true
		}
	}
	return best, found
}

// Snapshot returns every held filter/qos pair, for persisting a non-clean
// session's subscription set (spec §4.5).
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for filter, qos := range r.entries {
		out = append(out, Entry{Filter: filter, Qos: qos})
	}
	return out
}

// Len reports how many filters are currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entry is one filter/granted-qos pair.
type Entry struct {
	Filter string
	Qos    byte
}
