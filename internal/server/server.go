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

// Package server is the broker's I/O reactor (spec §4.7, C7): it accepts
// TCP and, optionally, WebSocket connections, owns the session manager and
// the retained/queued message stores, and fans a decoded PUBLISH out to
// every matching session. Each accepted connection is driven by its own
// goroutine (bounded through internal/goroutine) that is the sole owner of
// its session's mutable state; the structures it shares with its peers —
// the session table, the retained store, subscription registries — each
// carry their own lock, so the reactor stays correct without a single
// global owning goroutine.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yunqi/tideway/config"
	"github.com/yunqi/tideway/internal/goroutine"
	"github.com/yunqi/tideway/internal/persistence"
	"github.com/yunqi/tideway/internal/persistence/session"
	"github.com/yunqi/tideway/internal/persistence/subscription"
	"github.com/yunqi/tideway/internal/queue"
	"github.com/yunqi/tideway/internal/xlog"
	"github.com/yunqi/tideway/internal/xmetrics"
	sessionmgr "github.com/yunqi/tideway/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type (
	Server interface {
		Run() error
		Stop(ctx context.Context) error
	}

	Option func(*Options)

	Options struct {
		tcpListen       string
		websocketListen string
		persistence     *config.Persistence
		mqtt            config.Mqtt
	}

	server struct {
		opts Options

		tcpListener       net.Listener
		websocketServer   *http.Server
		sessionStore      session.Store
		subscriptionStore subscription.Store

		manager  *sessionmgr.Manager
		retained *queue.RetainedStore

		log    *xlog.Log
		tracer trace.Tracer

		closing chan struct{}
	}
)

func WithTcpListen(tcpListen string) Option {
	return func(opts *Options) { opts.tcpListen = tcpListen }
}

func WithWebsocketListen(websocketListen string) Option {
	return func(opts *Options) { opts.websocketListen = websocketListen }
}

func WithPersistence(p *config.Persistence) Option {
	return func(opts *Options) { opts.persistence = p }
}

func WithMqttConfig(mqtt config.Mqtt) Option {
	return func(opts *Options) { opts.mqtt = mqtt }
}

func loadServerOptions(opts ...Option) *Options {
	options := &Options{tcpListen: ":1883"}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func NewServer(opts ...Option) *server {
	options := loadServerOptions(opts...)
	s := &server{opts: *options, closing: make(chan struct{})}
	s.log = xlog.LoggerModule("server")
	s.init()
	return s
}

func (s *server) init() {
	s.tracer = otel.GetTracerProvider().Tracer("github.com/yunqi/tideway")

	sessionStoreFunc, ok := persistence.GetSessionStore(s.opts.persistence.Session.Type)
	if !ok {
		s.log.Panic("invalid session store", zap.String("type", s.opts.persistence.Session.Type))
	}
	sessionStore, err := sessionStoreFunc(&s.opts.persistence.Session)
	if err != nil {
		s.log.Panic("session store", zap.Error(err))
	}
	s.sessionStore = sessionStore
	s.log.Info("session store", zap.String("type", s.opts.persistence.Session.Type))

	subscriptionStoreFunc, ok := persistence.GetSubscriptionStore(s.opts.persistence.Subscription.Type)
	if !ok {
		s.log.Panic("invalid subscription store", zap.String("type", s.opts.persistence.Subscription.Type))
	}
	subscriptionStore, err := subscriptionStoreFunc(&s.opts.persistence.Subscription)
	if err != nil {
		s.log.Panic("subscription store", zap.Error(err))
	}
	s.subscriptionStore = subscriptionStore
	s.log.Info("subscription store", zap.String("type", s.opts.persistence.Subscription.Type))

	s.retained = queue.NewRetainedStore(s.opts.mqtt.MaxRetained)
	s.manager = sessionmgr.NewManager(
		s.opts.mqtt.MaxSessions,
		s.opts.mqtt.MaxStoredSessions,
		s.opts.mqtt.MaxSubscriptions,
		s.opts.mqtt.MaxQueued,
		s.opts.mqtt.MaxInflight,
		s.sessionStore,
		s.subscriptionStore,
		s.publishWill,
	)
}

// publishWill is the session manager's Publisher hook: it routes a last
// will exactly as an ordinary PUBLISH would be routed (spec §4.5).
func (s *server) publishWill(topic string, payload []byte, qos byte, retain bool) {
	s.route(topic, payload, qos)
	if retain {
		s.retained.Set(topic, payload, qos)
	}
}

// Run starts the TCP listener (and, if configured, the WebSocket listener)
// and blocks serving connections until Stop is called or a fatal listener
// error occurs (spec §4.7's accept loop).
func (s *server) Run() error {
	ln, err := net.Listen("tcp", s.opts.tcpListen)
	if err != nil {
		return err
	}
	s.tcpListener = ln
	s.log.Info("tcp listening", zap.String("addr", s.opts.tcpListen))

	if s.opts.websocketListen != "" {
		goroutine.Go(func() { s.serveWebsocket() })
	}

	goroutine.Go(s.reportMetrics)

	return s.serveTCP()
}

// reportMetrics periodically refreshes the gauges that have no natural
// increment/decrement point of their own (spec §4.7's reactor owns the
// session table, so it is the natural place to sample its size).
func (s *server) reportMetrics() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.closing:
			return
		case <-ticker.C:
			xmetrics.ActiveSessions.Set(float64(s.manager.Len()))
			xmetrics.RetainedMessages.Set(float64(s.retained.Len()))
		}
	}
}

func (s *server) serveTCP() error {
	defer func() {
		if err := s.tcpListener.Close(); err != nil {
			s.log.Error("tcp listener close", zap.Error(err))
		}
	}()

	var tempDelay time.Duration
	for {
		conn, err := s.tcpListener.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				s.log.Warn("accept temporary error, retrying", zap.Error(err), zap.Duration("delay", tempDelay))
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetKeepAlive(true)
		}
		c := newClient(s, conn)
		goroutine.Go(c.listen)
	}
}

var upgrader = websocket.Upgrader{
	Subprotocols: []string{"mqtt", "mqttv3.1"},
	CheckOrigin:  func(*http.Request) bool { return true },
}

func (s *server) serveWebsocket() {
	mux := http.NewServeMux()
	mux.HandleFunc("/mqtt", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("websocket upgrade", zap.Error(err))
			return
		}
		c := newClient(s, &wsConn{Conn: conn})
		goroutine.Go(c.listen)
	})

	s.websocketServer = &http.Server{Addr: s.opts.websocketListen, Handler: mux}
	s.log.Info("websocket listening", zap.String("addr", s.opts.websocketListen))
	if err := s.websocketServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error("websocket serve", zap.Error(err))
	}
}

// Stop closes the listeners, unblocking Run. Connections that are already
// live are not closed here.
func (s *server) Stop(ctx context.Context) error {
	close(s.closing)
	if s.tcpListener != nil {
		_ = s.tcpListener.Close()
	}
	if s.websocketServer != nil {
		return s.websocketServer.Shutdown(ctx)
	}
	return nil
}

// ActiveSessions reports the number of currently live sessions, for the
// status/metrics surface.
func (s *server) ActiveSessions() int {
	return s.manager.Len()
}
