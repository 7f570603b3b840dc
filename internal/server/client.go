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
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/yunqi/tideway/internal/packet"
	sessionmgr "github.com/yunqi/tideway/internal/session"
	"github.com/yunqi/tideway/internal/xlog"
	"go.uber.org/zap"
)

// transport is the byte-stream surface client needs; satisfied by
// net.Conn directly and by wsConn for the WebSocket listener.
type transport interface {
	io.Reader
	io.Writer
	io.Closer
	SetReadDeadline(t time.Time) error
}

// client drives one connection end to end: it is the sole owner of its
// session's mutable state and the sole writer on its transport, so no
// locking is needed between reading a request and writing its response
// (spec §4.7's single-owner posture, adapted to one goroutine per
// connection instead of one goroutine for the whole broker).
type client struct {
	s    *server
	conn transport
	r    *bufio.Reader
	wmu  sync.Mutex

	sess      *sessionmgr.Session
	displaced bool
	log       *xlog.Log

	ctx context.Context
}

func newClient(s *server, conn transport) *client {
	return &client{
		s:    s,
		conn: conn,
		r:    bufio.NewReader(conn),
		sess: s.manager.Accept(),
		log:  xlog.LoggerModule("client"),
		ctx:  context.Background(),
	}
}

// listen is the connection's read/drain loop (spec §4.7's reactor tick,
// specialized to one connection): it blocks on the next fixed header up to
// ReadTimeout, and on every timeout or successful packet it flushes the
// session's outbound queue before looping again. A half-open session that
// sends no CONNECT within InactiveTimeout is dropped without ceremony.
func (c *client) listen() {
	defer c.teardown()

	deadline := time.Now().Add(c.s.opts.mqtt.InactiveTimeout)
	for {
		budget := c.pollTimeout()
		if time.Now().After(deadline) && c.sess.State() == sessionmgr.StateHalfOpen {
			c.log.Debug("half-open session timed out waiting for CONNECT")
			return
		}
		if c.sess.State() == sessionmgr.StateDropped {
			// Displaced by a client-id substitution (spec §4.5).
			c.displaced = true
			return
		}
		if c.sess.State() == sessionmgr.StateActive && c.sess.KeepAlive > 0 &&
			c.sess.IdleFor() > 2*c.sess.KeepAlive {
			c.log.Debug("keepalive expired", zap.String("clientId", c.sess.ClientId))
			return
		}

		_ = c.conn.SetReadDeadline(time.Now().Add(budget))
		fh, err := packet.DecodeFixedHeader(c.r)
		if err != nil {
			if isTimeout(err) {
				c.drainOutbound()
				continue
			}
			if !errors.Is(err, io.EOF) {
				c.log.Debug("read fixed header", zap.Error(err))
			}
			return
		}
		if fh.RemainLength > c.s.opts.mqtt.MaxPacketSize {
			c.log.Warn("packet exceeds max size", zap.Uint32("remainLength", fh.RemainLength))
			return
		}

		c.sess.Touch()
		if !c.dispatch(fh) {
			return
		}
		c.drainOutbound()
	}
}

// pollTimeout is the configured read poll interval (ReadTimeout), or 100ms
// when none is configured. It does not shorten the wait to fit the
// session's keepalive; listen checks the keepalive once per poll.
func (c *client) pollTimeout() time.Duration {
	poll := c.s.opts.mqtt.ReadTimeout
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	return poll
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// drainOutbound writes every message queued for this session since the
// last poll (spec §4.7's queue-draining duty).
func (c *client) drainOutbound() {
	for _, msg := range c.sess.Outbound.DrainAll() {
		pub := &packet.Publish{
			Topic:   []byte(msg.Topic),
			Payload: msg.Payload,
			Qos:     msg.Qos,
			Retain:  msg.Retain,
		}
		if msg.Qos > 0 {
			pub.PacketId = c.sess.NextPacketId()
			if msg.Qos == 2 && !c.sess.MarkOutboundInflight(pub.PacketId) {
				c.log.Warn("outbound inflight full, dropping publication", zap.String("topic", msg.Topic))
				continue
			}
		}
		if err := c.writePacket(pub); err != nil {
			c.log.Debug("write publish", zap.Error(err))
			return
		}
	}
}

func (c *client) writePacket(p interface{ Encode(io.Writer) error }) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return p.Encode(c.conn)
}

func (c *client) teardown() {
	_ = c.conn.Close()
	switch {
	case c.displaced:
		c.s.manager.Displace(c.sess)
	case c.sess.State() == sessionmgr.StateClosed:
		c.s.manager.Close(c.ctx, c.sess)
	default:
		c.s.manager.Drop(c.ctx, c.sess)
	}
}
