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

// Package session models one client's connection lifecycle (spec §4.5):
// half-open while it waits for CONNECT, active once accepted, and finally
// closed (graceful DISCONNECT) or dropped (protocol violation, I/O error,
// keepalive timeout) — the latter optionally publishing a last will.
package session

import (
	"sync"
	"time"

	"github.com/yunqi/tideway/internal/queue"
	"github.com/yunqi/tideway/internal/subscription"
)

type State int

const (
	// StateHalfOpen is a freshly accepted connection that has not yet
	// sent a valid CONNECT.
	StateHalfOpen State = iota
	// StateActive is a connection operating normally after CONNECT.
	StateActive
	// StateClosed is a session that sent DISCONNECT before the
	// transport closed (spec §4.6): no will is published.
	StateClosed
	// StateDropped is a session that ended any other way: I/O error,
	// malformed packet, keepalive timeout, or administrative action. A
	// will is published if one was registered (spec §4.5).
	StateDropped
)

// Will is the last-will publication registered at CONNECT time.
type Will struct {
	Topic   string
	Message []byte
	Qos     byte
	Retain  bool
}

// Session is the broker's view of one client, from accept through close or
// drop. Every field below is only ever touched by the reactor's single
// owning goroutine except where noted; Subscriptions and Outbound carry
// their own locks because the session manager's persistence and sweep
// paths read them from outside that goroutine.
type Session struct {
	mu sync.Mutex

	ClientId      string
	CleanSession  bool
	Version       byte
	KeepAlive     time.Duration
	Will          *Will
	state         State
	connectedAt   time.Time
	lastActivity  time.Time

	Subscriptions *subscription.Registry
	Outbound      *queue.Pending

	// InboundInflight tracks QoS-2 packet ids the broker has PUBRECed but
	// not yet PUBCOMPed for inbound publishes from this client.
	InboundInflight map[uint16]struct{}
	// OutboundInflight tracks QoS-2 packet ids the broker has PUBLISHed to
	// this client but not yet received PUBCOMP for (spec §9 decision: the
	// outbound QoS-2 handshake is tracked the same as inbound, so a
	// duplicate PUBREC or a PUBREL for an unknown id is detectable).
	OutboundInflight map[uint16]struct{}
	maxInflight      int

	nextPacketId uint16
}

func New(clientId string, maxSubscriptions, maxQueued, maxInflight int) *Session {
	return &Session{
		ClientId:         clientId,
		state:            StateHalfOpen,
		connectedAt:      time.Now(),
		lastActivity:     time.Now(),
		Subscriptions:    subscription.NewRegistry(maxSubscriptions),
		Outbound:         queue.NewPending(maxQueued),
		InboundInflight:  make(map[uint16]struct{}),
		OutboundInflight: make(map[uint16]struct{}),
		maxInflight:      maxInflight,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Touch records activity for the keepalive sweep (spec §4.5).
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// IdleFor reports how long it has been since the last recorded activity.
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity)
}

// NextPacketId returns the next outbound packet identifier, wrapping from
// 0xFFFF back to 1 (0 is reserved, spec §3).
func (s *Session) NextPacketId() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPacketId++
	if s.nextPacketId == 0 {
		s.nextPacketId = 1
	}
	return s.nextPacketId
}

// MarkInboundInflight records packetId as awaiting PUBREL. It reports
// duplicate=true when packetId was already tracked (a redelivery of a QoS-2
// PUBLISH the broker has already seen, spec §4.6) and ok=false when the
// per-session inflight bound (MaxInflight) is already reached for a
// brand-new id.
func (s *Session) MarkInboundInflight(packetId uint16) (duplicate bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.InboundInflight[packetId]; exists {
		return true, true
	}
	if len(s.InboundInflight) >= s.maxInflight {
		return false, false
	}
	s.InboundInflight[packetId] = struct{}{}
	return false, true
}

// ResolveInboundInflight clears packetId when its PUBREL arrives (the
// broker then answers PUBCOMP), reporting whether it was tracked.
func (s *Session) ResolveInboundInflight(packetId uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.InboundInflight[packetId]; !ok {
		return false
	}
	delete(s.InboundInflight, packetId)
	return true
}

// MarkOutboundInflight records packetId as awaiting the client's PUBREC,
// reporting false when MaxInflight is already reached.
func (s *Session) MarkOutboundInflight(packetId uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.OutboundInflight) >= s.maxInflight {
		return false
	}
	s.OutboundInflight[packetId] = struct{}{}
	return true
}

// ResolveOutboundInflight clears packetId on PUBCOMP, reporting whether it
// was tracked.
func (s *Session) ResolveOutboundInflight(packetId uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.OutboundInflight[packetId]; !ok {
		return false
	}
	delete(s.OutboundInflight, packetId)
	return true
}

// HasOutboundInflight reports whether packetId is currently tracked,
// without clearing it (used to validate an inbound PUBREC before moving it
// to the PUBREL stage).
func (s *Session) HasOutboundInflight(packetId uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.OutboundInflight[packetId]
	return ok
}

// clearInflight empties both inflight identifier sets, for a clean-session
// activation that must discard any transferred or restored state (spec
// §4.5).
func (s *Session) clearInflight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InboundInflight = make(map[uint16]struct{})
	s.OutboundInflight = make(map[uint16]struct{})
}
