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
	"errors"

	"github.com/yunqi/tideway/internal/code"
	"github.com/yunqi/tideway/internal/packet"
	sessionmgr "github.com/yunqi/tideway/internal/session"
	"github.com/yunqi/tideway/internal/topic"
	"github.com/yunqi/tideway/internal/xerror"
	"github.com/yunqi/tideway/internal/xmetrics"
	"go.uber.org/zap"
)

// dispatch decodes and handles one control packet. It reports whether the
// connection should keep being served; false means the caller must tear
// the connection down (spec §4.6's "any violation drops the session").
func (c *client) dispatch(fh *packet.FixedHeader) bool {
	xmetrics.PacketsReceived.WithLabelValues(fh.PacketType.String()).Inc()

	if fh.PacketType == packet.CONNECT {
		return c.handleConnect(fh)
	}
	if c.sess.State() != sessionmgr.StateActive {
		c.log.Warn("packet before CONNECT", zap.String("type", fh.PacketType.String()))
		return false
	}

	body, err := packet.DecodeBody(fh, c.r)
	if err != nil {
		c.log.Warn("malformed packet", zap.String("type", fh.PacketType.String()), zap.Error(err))
		return false
	}

	switch p := body.(type) {
	case *packet.Publish:
		return c.handlePublish(p)
	case *packet.Puback:
		c.sess.ResolveOutboundInflight(p.PacketId)
		return true
	case *packet.Pubrec:
		return c.handlePubrec(p)
	case *packet.Pubrel:
		return c.handlePubrel(p)
	case *packet.Pubcomp:
		c.sess.ResolveOutboundInflight(p.PacketId)
		return true
	case *packet.Subscribe:
		return c.handleSubscribe(p)
	case *packet.Unsubscribe:
		return c.handleUnsubscribe(p)
	case *packet.Pingreq:
		return c.writePacket(&packet.Pingresp{}) == nil
	case *packet.Disconnect:
		c.sess.SetState(sessionmgr.StateClosed)
		return false
	default:
		return false
	}
}

// handleConnect validates CONNECT and activates the session (spec §4.5,
// §4.6). Any CONNACK the spec calls for is sent even on refusal; only the
// transport is then closed.
func (c *client) handleConnect(fh *packet.FixedHeader) bool {
	conn, err := packet.NewConnect(fh, c.r)
	if err != nil {
		if cd, ok := connectErrorCode(err); ok {
			_ = c.writePacket(&packet.Connack{Code: cd})
		}
		c.log.Debug("connect rejected", zap.Error(err))
		return false
	}

	if conn.UsernameFlag {
		// Authentication is out of this broker's scope (spec Non-goals);
		// any presented credentials are accepted as-is.
	}

	clientId := string(conn.ClientId)
	if clientId == "" {
		if !c.s.opts.mqtt.AllowZeroLenClientId {
			_ = c.writePacket(&packet.Connack{Code: code.RefusedIdentifierRejected})
			return false
		}
		clientId = generateClientId()
	}

	if conn.WillFlag {
		c.sess.Will = &sessionmgr.Will{
			Topic:   string(conn.WillTopic),
			Message: conn.WillMessage,
			Qos:     conn.WillQoS,
			Retain:  conn.WillRetain,
		}
	}
	c.sess.KeepAlive = secondsToDuration(conn.KeepAlive)

	sessionPresent, displaced, err := c.s.manager.Activate(c.ctx, c.sess, clientId, conn.CleanSession)
	if err != nil {
		_ = c.writePacket(&packet.Connack{Code: code.RefusedServerUnavailable})
		return false
	}
	if displaced != nil {
		// Client-id substitution (spec §4.5): the old connection's owning
		// goroutine notices on its own next poll once its session state
		// is no longer active, and tears itself down.
		displaced.SetState(sessionmgr.StateDropped)
	}

	if err := c.writePacket(conn.NewConnackPacket(code.Success, sessionPresent)); err != nil {
		return false
	}
	xmetrics.PacketsSent.WithLabelValues("CONNACK").Inc()
	return true
}

func connectErrorCode(err error) (code.Code, bool) {
	switch {
	case errors.Is(err, xerror.ErrV3UnacceptableProtocolVersion):
		return code.RefusedUnacceptableProtocol, true
	case errors.Is(err, xerror.ErrV3IdentifierRejected):
		return code.RefusedIdentifierRejected, true
	default:
		return 0, false
	}
}

// handlePublish routes an inbound PUBLISH and acknowledges it per its QoS
// (spec §4.4, §4.6). A QoS-2 PUBLISH whose packet id is already tracked is
// a redelivery: it must carry dup=1 (otherwise the session is dropped as a
// protocol violation) and its payload is discarded rather than routed
// again, so retries never break exactly-once delivery.
func (c *client) handlePublish(p *packet.Publish) bool {
	if p.Qos == 2 {
		duplicate, ok := c.sess.MarkInboundInflight(p.PacketId)
		if !ok {
			c.log.Warn("inbound inflight full", zap.Uint16("packetId", p.PacketId))
			return false
		}
		if duplicate {
			if !p.Dup {
				c.log.Warn("repeated packet id without dup flag", zap.Uint16("packetId", p.PacketId))
				return false
			}
			return c.writePacket(&packet.Pubrec{PacketId: p.PacketId}) == nil
		}
	}

	topicName := string(p.Topic)
	c.s.route(topicName, p.Payload, p.Qos)
	if p.Retain {
		c.s.retained.Set(topicName, p.Payload, p.Qos)
	}

	switch p.Qos {
	case 0:
		return true
	case 1:
		return c.writePacket(&packet.Puback{PacketId: p.PacketId}) == nil
	case 2:
		return c.writePacket(&packet.Pubrec{PacketId: p.PacketId}) == nil
	default:
		return false
	}
}

// handlePubrec answers the broker's own outbound QoS-2 PUBLISH handshake
// (spec §9 decision: outbound QoS-2 is tracked). TolerantPubrec preserves
// the original firmware's behavior of answering PUBREL for any id at all.
func (c *client) handlePubrec(p *packet.Pubrec) bool {
	if !c.sess.HasOutboundInflight(p.PacketId) && !c.s.opts.mqtt.TolerantPubrec {
		return false
	}
	return c.writePacket(&packet.Pubrel{PacketId: p.PacketId}) == nil
}

func (c *client) handlePubrel(p *packet.Pubrel) bool {
	resolved := c.sess.ResolveInboundInflight(p.PacketId)
	if !resolved && !c.s.opts.mqtt.TolerantPubrec {
		return false
	}
	return c.writePacket(&packet.Pubcomp{PacketId: p.PacketId}) == nil
}

// handleSubscribe grants each requested filter (bounded by
// MaxSubscriptions) and replays any retained message matching it (spec
// §4.3, §4.4's handle_retained).
func (c *client) handleSubscribe(p *packet.Subscribe) bool {
	suback := &packet.Suback{PacketId: p.PacketId}
	for _, t := range p.Topics {
		filter := string(t.Filter)
		if !c.sess.Subscriptions.Add(filter, t.Qos) {
			suback.Codes = append(suback.Codes, code.SubackFailure)
			continue
		}
		switch t.Qos {
		case 1:
			suback.Codes = append(suback.Codes, code.SubackQoS1)
		case 2:
			suback.Codes = append(suback.Codes, code.SubackQoS2)
		default:
			suback.Codes = append(suback.Codes, code.SubackQoS0)
		}

		for _, r := range c.s.retained.Matching(filter, topic.Match) {
			qos := r.Qos
			if t.Qos < qos {
				qos = t.Qos
			}
			_ = c.sess.Outbound.Enqueue(retainedAsMessage(r, qos))
		}
	}
	return c.writePacket(suback) == nil
}

func (c *client) handleUnsubscribe(p *packet.Unsubscribe) bool {
	unsuback := &packet.Unsuback{PacketId: p.PacketId}
	for _, f := range p.Filters {
		c.sess.Subscriptions.Remove(string(f))
	}
	return c.writePacket(unsuback) == nil
}
