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

// Package subscription persists the subscription set of a non-clean
// session alongside its session record (spec §4.5 "restore" also restores
// the filters that were active, so a publication made while the client was
// offline is still routed to its queue).
package subscription

import "context"

// Entry is one filter/granted-qos pair.
type Entry struct {
	Filter string
	Qos    byte
}

// Store is the persistence boundary for a non-clean session's subscription
// set. Implementations must be safe for concurrent use.
type Store interface {
	// Replace overwrites clientId's stored subscription set.
	Replace(ctx context.Context, clientId string, entries []Entry) error
	// Load returns the stored subscription set for clientId, or (nil, nil)
	// if none exists.
	Load(ctx context.Context, clientId string) ([]Entry, error)
	// Delete removes clientId's stored subscription set.
	Delete(ctx context.Context, clientId string) error
}
