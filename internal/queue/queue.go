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

package queue

import (
	"sync"

	"github.com/yunqi/tideway/internal/xerror"
)

// Message is one publication waiting to be delivered to a live session
// whose connection goroutine has not yet drained its outbound side (spec
// §4.4). Nothing is queued for stored (offline) sessions.
type Message struct {
	Topic   string
	Payload []byte
	Qos     byte
	Retain  bool
}

// Pending is one session's bounded FIFO of outbound publications: a
// deliberate per-session rendition of spec §4.4/§5's single broker-wide
// MAX_QUEUED table (see DESIGN.md). Overflow is rejected, not evicted
// (spec §8 property 8), so the caller can fall back to dropping the
// session or the message per policy.
type Pending struct {
	mu   sync.Mutex
	max  int
	msgs []Message
}

func NewPending(max int) *Pending {
	return &Pending{max: max}
}

// Enqueue appends msg, returning xerror.ErrQueueFull when the queue is
// already at its bound.
func (p *Pending) Enqueue(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.msgs) >= p.max {
		return xerror.ErrQueueFull
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

// DrainAll removes and returns every queued message, in FIFO order, for
// delivery once the session is writable again (spec §4.7's queue-draining
// duty of the reactor).
func (p *Pending) DrainAll() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.msgs
	p.msgs = nil
	return out
}

// Len reports how many messages are currently queued.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}
