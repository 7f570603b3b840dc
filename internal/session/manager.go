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

	"github.com/bytedance/gopkg/collection/skipmap"
	persistsession "github.com/yunqi/tideway/internal/persistence/session"
	persistsub "github.com/yunqi/tideway/internal/persistence/subscription"
	"github.com/yunqi/tideway/internal/xerror"
	"github.com/yunqi/tideway/internal/xlog"
	"go.uber.org/zap"
)

// Publisher routes a dropped session's last will back into the broker.
// The server supplies the real implementation (server.publishWill); it is
// injected here to avoid an import cycle between session and server.
type Publisher func(topic string, payload []byte, qos byte, retain bool)

// Manager owns the broker-wide table of live sessions plus the persisted
// table of non-clean (offline) sessions (spec §4.5). The live table is a
// lock-free skip list keyed by client id: status lookups (Get) and the
// router's fan-out (All) run on every PUBLISH and must not contend with
// each other or with a concurrent Activate/teardown on a different client.
// activateMu serializes only the admission-control decision (read the
// live count against MaxSessions, then insert) that a plain concurrent
// map can't make atomic on its own.
type Manager struct {
	activateMu sync.Mutex
	log        *xlog.Log
	maxLive    int
	live       *skipmap.StringMap

	sessionStore      persistsession.Store
	subscriptionStore persistsub.Store
	maxSubscriptions  int
	maxQueued         int
	maxInflight       int
	maxStoredSessions int

	publish Publisher
}

func NewManager(maxLive, maxStoredSessions, maxSubscriptions, maxQueued, maxInflight int, sessionStore persistsession.Store, subscriptionStore persistsub.Store, publish Publisher) *Manager {
	return &Manager{
		log:               xlog.LoggerModule("session"),
		maxLive:           maxLive,
		live:              skipmap.NewString(),
		sessionStore:      sessionStore,
		subscriptionStore: subscriptionStore,
		maxSubscriptions:  maxSubscriptions,
		maxQueued:         maxQueued,
		maxInflight:       maxInflight,
		maxStoredSessions: maxStoredSessions,
		publish:           publish,
	}
}

// Accept creates a half-open session for a freshly dialed connection, not
// yet keyed by client id (spec §4.5's half-open state exists before
// CONNECT names the client).
func (m *Manager) Accept() *Session {
	return New("", m.maxSubscriptions, m.maxQueued, m.maxInflight)
}

// Activate binds a half-open session to clientId once CONNECT validates,
// per spec §4.5/§4.6's activation algorithm:
//   - scan the live table for clientId first; if found, its inflight sets
//     and subscription list are transferred into s, the old connection is
//     displaced, and sessionPresent is forced true;
//   - else, if a stored (offline, non-clean) session exists for clientId,
//     its subscriptions are restored the same way;
//   - else sessionPresent is false.
//
// Finally, if cleanSession is true, any restored or transferred state is
// discarded and sessionPresent is forced back to false regardless of what
// was found, exactly as spec §4.5 requires.
//
// It returns sessionPresent and the displaced session, if any, so the
// caller can drop its connection.
func (m *Manager) Activate(ctx context.Context, s *Session, clientId string, cleanSession bool) (sessionPresent bool, displaced *Session, err error) {
	m.activateMu.Lock()
	if m.live.Len() >= m.maxLive {
		if _, exists := m.live.Load(clientId); !exists {
			m.activateMu.Unlock()
			return false, nil, xerror.ErrSessionsFull
		}
	}
	if old, exists := m.live.Load(clientId); exists {
		displaced = old.(*Session)
	}
	s.ClientId = clientId
	s.CleanSession = cleanSession
	s.SetState(StateActive)
	m.live.Store(clientId, s)
	m.activateMu.Unlock()

	switch {
	case displaced != nil:
		transferState(displaced, s)
		sessionPresent = true
	case !cleanSession:
		stored, loadErr := m.sessionStore.Load(ctx, clientId)
		if loadErr != nil {
			m.log.Warn("load stored session", zap.String("clientId", clientId), zap.Error(loadErr))
			break
		}
		if stored == nil {
			break
		}
		entries, subErr := m.subscriptionStore.Load(ctx, clientId)
		if subErr != nil {
			m.log.Warn("load stored subscriptions", zap.String("clientId", clientId), zap.Error(subErr))
		}
		for _, e := range entries {
			s.Subscriptions.Add(e.Filter, e.Qos)
		}
		sessionPresent = true
	}

	if cleanSession {
		s.Subscriptions.Clear()
		s.clearInflight()
		sessionPresent = false
		_ = m.sessionStore.Delete(ctx, clientId)
		_ = m.subscriptionStore.Delete(ctx, clientId)
	}

	return sessionPresent, displaced, nil
}

// transferState moves old's inflight identifier sets and subscription list
// into s (spec §4.5's substitution/restore: "transfer its inflight array
// and subscription list into the new session").
func transferState(old, s *Session) {
	old.mu.Lock()
	for id := range old.InboundInflight {
		s.InboundInflight[id] = struct{}{}
	}
	for id := range old.OutboundInflight {
		s.OutboundInflight[id] = struct{}{}
	}
	old.mu.Unlock()

	for _, e := range old.Subscriptions.Snapshot() {
		s.Subscriptions.Add(e.Filter, e.Qos)
	}
}

// Close ends s gracefully (DISCONNECT received, spec §4.6): no will is
// published, and a non-clean session is persisted for later restore.
func (m *Manager) Close(ctx context.Context, s *Session) {
	s.SetState(StateClosed)
	m.teardown(ctx, s)
}

// Drop ends s abnormally (I/O error, malformed packet, keepalive timeout,
// spec §4.5): its will, if any, is published before the session is
// persisted or discarded.
func (m *Manager) Drop(ctx context.Context, s *Session) {
	s.SetState(StateDropped)
	if s.Will != nil && m.publish != nil {
		m.publish(s.Will.Topic, s.Will.Message, s.Will.Qos, s.Will.Retain)
	}
	m.teardown(ctx, s)
}

// Displace ends s because a new connection claimed its client id (spec
// §4.5's client-id substitution). No will is published, and nothing is
// persisted: the new connection now owns clientId's stored state going
// forward, and already restored whatever was on record before it
// activated.
func (m *Manager) Displace(s *Session) {
	m.removeIfCurrent(s)
}

func (m *Manager) removeIfCurrent(s *Session) {
	if s.ClientId == "" {
		return
	}
	if cur, exists := m.live.Load(s.ClientId); exists && cur.(*Session) == s {
		m.live.Delete(s.ClientId)
	}
}

func (m *Manager) teardown(ctx context.Context, s *Session) {
	m.removeIfCurrent(s)

	if s.ClientId == "" {
		return
	}
	if s.CleanSession {
		_ = m.sessionStore.Delete(ctx, s.ClientId)
		_ = m.subscriptionStore.Delete(ctx, s.ClientId)
		return
	}

	m.persist(ctx, s)
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	rec := &persistsession.StoredSession{ClientId: s.ClientId}
	if s.Will != nil {
		rec.HasWill = true
		rec.WillTopic = s.Will.Topic
		rec.WillMessage = s.Will.Message
		rec.WillQos = s.Will.Qos
		rec.WillRetain = s.Will.Retain
	}
	if err := m.sessionStore.Save(ctx, rec); err != nil {
		m.log.Warn("save stored session", zap.String("clientId", s.ClientId), zap.Error(err))
		return
	}

	snapshot := s.Subscriptions.Snapshot()
	entries := make([]persistsub.Entry, len(snapshot))
	for i, e := range snapshot {
		entries[i] = persistsub.Entry{Filter: e.Filter, Qos: e.Qos}
	}
	if err := m.subscriptionStore.Replace(ctx, s.ClientId, entries); err != nil {
		m.log.Warn("save stored subscriptions", zap.String("clientId", s.ClientId), zap.Error(err))
	}

	m.evictOverflow(ctx)
}

// evictOverflow drops the oldest stored session once the store exceeds its
// bound (spec §4.5).
func (m *Manager) evictOverflow(ctx context.Context) {
	n, err := m.sessionStore.Len(ctx)
	if err != nil || n <= m.maxStoredSessions {
		return
	}
	oldest, err := m.sessionStore.Oldest(ctx)
	if err != nil || oldest == "" {
		return
	}
	_ = m.sessionStore.Delete(ctx, oldest)
	_ = m.subscriptionStore.Delete(ctx, oldest)
}

// Get returns the live session for clientId, if any.
func (m *Manager) Get(clientId string) (*Session, bool) {
	v, ok := m.live.Load(clientId)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// All returns a snapshot of every currently live session, for the
// router's fan-out.
func (m *Manager) All() []*Session {
	out := make([]*Session, 0, m.live.Len())
	m.live.Range(func(_ string, value interface{}) bool {
		out = append(out, value.(*Session))
		return true
	})
	return out
}

// Len reports the number of currently live sessions.
func (m *Manager) Len() int {
	return m.live.Len()
}
