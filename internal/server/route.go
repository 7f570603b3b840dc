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

package server

import (
	"github.com/yunqi/tideway/internal/queue"
	sessionmgr "github.com/yunqi/tideway/internal/session"
	"go.uber.org/zap"
)

// route delivers one publication to every currently live session with a
// matching subscription (spec §4.4). The publication is only enqueued
// here; each session's own connection goroutine drains its queue on its
// next poll tick (see client.listen), so route never blocks on a slow or
// stalled peer.
//
// The retain flag is never set on this live fan-out: MQTT §3.3.1.3
// requires it cleared on the wire for any PUBLISH except one sent in
// direct response to a new SUBSCRIBE (handleSubscribe's retained replay,
// which sets it itself). A publisher's retain=1 only affects the separate
// retained-message store, updated by the caller.
//
// DeliveryMode controls how a session holding more than one matching
// filter is treated:
//   - "overlap" (the original algorithm) enqueues once per matching
//     filter, at that filter's granted QoS;
//   - "onlyonce" enqueues a single copy per session, at the highest QoS
//     granted by any matching filter (SPEC_FULL supplement).
//
// A publication that cannot be queued (MaxQueued reached) is dropped
// rather than blocking or evicting: the QoS guarantee binds the
// publisher-to-broker hop, not the broker-to-subscriber fan-out, once the
// broker has accepted the PUBLISH.
func (s *server) route(topicName string, payload []byte, qos byte) {
	for _, sess := range s.manager.All() {
		if s.opts.mqtt.DeliveryMode == "onlyonce" {
			best, matched := sess.Subscriptions.MaxQos(topicName)
			if !matched {
				continue
			}
			deliverQos := qos
			if best < deliverQos {
				deliverQos = best
			}
			s.enqueue(sess, topicName, payload, deliverQos)
			continue
		}

		for _, entry := range sess.Subscriptions.Matching(topicName) {
			deliverQos := qos
			if entry.Qos < deliverQos {
				deliverQos = entry.Qos
			}
			s.enqueue(sess, topicName, payload, deliverQos)
		}
	}
}

func (s *server) enqueue(sess *sessionmgr.Session, topicName string, payload []byte, qos byte) {
	msg := queue.Message{Topic: topicName, Payload: payload, Qos: qos, Retain: false}
	if err := sess.Outbound.Enqueue(msg); err != nil {
		s.log.Warn("queue full, dropping publication", zap.String("clientId", sess.ClientId), zap.String("topic", topicName))
	}
}
