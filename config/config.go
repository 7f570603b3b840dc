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

// Package config defines the broker's YAML configuration surface and its
// validation rules. The two values the spec's configuration collaborator
// supplies at startup (Mqtt.Enabled, Mqtt.TCPListen) sit alongside the
// broker's own bounded-resource policy and ambient (persistence, tracing)
// settings (SPEC_FULL §AMBIENT STACK).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Configuration interface {
	// Validate validates the configuration. If it returns an error the
	// broker must not start.
	Validate() error
}

type Config struct {
	// ServiceName is the service name attached to the tracer provider's
	// resource (internal/xtrace); log lines do not carry it.
	ServiceName string `yaml:"service_name"`
	// WorkerPoolSize bounds the number of concurrently live per-connection
	// goroutines (internal/goroutine); 0 disables pooling entirely.
	WorkerPoolSize int `yaml:"worker_pool_size"`

	Log  Log  `yaml:"log"`
	Mqtt Mqtt `yaml:"mqtt"`
}

// Log configures the process-wide logger (internal/xlog).
type Log struct {
	Level      string `yaml:"level"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.Mqtt.Validate()
}

// Mqtt is the broker's tunable policy (spec §5 bounded tables, §6 startup
// collaborator values, and the SPEC_FULL supplements).
type Mqtt struct {
	// Enabled gates startup; when false cmd/tideway logs a notice and
	// exits without starting the broker. No status value is published.
	Enabled bool `yaml:"enabled"`
	// TCPListen is the "host:port" the raw-TCP listener binds; the
	// configuration collaborator's port value (default 1883).
	TCPListen string `yaml:"tcp_listen" validate:"required"`
	// WebsocketListen optionally binds a second listener that frames
	// MQTT packets inside WebSocket binary messages. Empty disables it.
	WebsocketListen string `yaml:"websocket_listen"`

	// ReadTimeout bounds each blocking packet-body read on an
	// already-readable connection (spec §4.5, ~100ms).
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// SelectTimeout is accepted and defaulted but not read by the broker:
	// each connection goroutine polls at ReadTimeout instead.
	SelectTimeout time.Duration `yaml:"select_timeout"`
	// InactiveTimeout bounds how long a half-open (not yet CONNECTed)
	// session may sit idle before the sweep drops it (spec §4.5).
	InactiveTimeout time.Duration `yaml:"inactive_timeout"`
	// RestartDelay is accepted and defaulted but not read by the broker:
	// a fatal listener error ends Server.Run, and cmd/tideway then shuts
	// down instead of restarting the listener.
	RestartDelay time.Duration `yaml:"restart_delay"`

	// MaxSessions bounds the current-sessions set (spec §4.5).
	MaxSessions int `yaml:"max_sessions" validate:"gt=0"`
	// MaxStoredSessions bounds the stored (non-clean, offline) sessions
	// set; oldest is evicted on overflow (spec §4.5).
	MaxStoredSessions int `yaml:"max_stored_sessions" validate:"gt=0"`
	// MaxSubscriptions bounds the distinct filters held by one session
	// (spec §4.3).
	MaxSubscriptions int `yaml:"max_subscriptions" validate:"gt=0"`
	// MaxInflight bounds a session's inbound (QoS-2) and outbound
	// (QoS-2) inflight identifier sets (spec §3, §9).
	MaxInflight int `yaml:"max_inflight" validate:"gt=0"`
	// MaxQueued bounds each session's own outbound publication queue
	// (spec §4.4's MAX_QUEUED, adapted per-session: see DESIGN.md).
	MaxQueued int `yaml:"max_queued" validate:"gt=0"`
	// MaxRetained bounds the retained-message store; oldest evicted on
	// overflow (spec §4.4, §8 property 5).
	MaxRetained int `yaml:"max_retained" validate:"gt=0"`
	// MaxPacketSize is the largest packet body the broker accepts.
	MaxPacketSize uint32 `yaml:"max_packet_size" validate:"gt=0"`

	// DeliveryMode controls how a publication matching more than one of
	// a session's subscriptions is fanned out (SPEC_FULL supplement):
	// "overlap" delivers once per matching subscription (spec §4.4's
	// literal algorithm); "onlyonce" delivers once per session at the
	// highest QoS granted by any matching subscription.
	DeliveryMode string `yaml:"delivery_mode" validate:"oneof=overlap onlyonce"`
	// AllowZeroLenClientId mirrors spec §4.6/§8 property 9 (v3.1.1,
	// clean=true). When true the broker assigns a generated id to an
	// empty one; when false it refuses the CONNECT with CONNACK code 2.
	AllowZeroLenClientId bool `yaml:"allow_zero_len_client_id"`
	// TolerantPubrec preserves the original C source's policy of
	// acknowledging any PUBREC/PUBREL packet id, even one the broker
	// never tracked (spec §4.6, §9 open question). Disabling it turns
	// an untracked PUBREL into a protocol violation that drops the
	// session.
	TolerantPubrec bool `yaml:"tolerant_pubrec"`

	Persistence Persistence `yaml:"persistence"`
	Tracing     Tracing     `yaml:"tracing"`
}

// Persistence selects the backing stores for non-clean session state
// (spec §4.5's "optional storage of non-clean sessions"). "memory" bounds
// storage to the process's lifetime; "redis" survives a process restart.
type Persistence struct {
	Session      StoreConfig `yaml:"session"`
	Subscription StoreConfig `yaml:"subscription"`
}

type StoreConfig struct {
	Type  string `yaml:"type" validate:"oneof=memory redis"`
	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Tracing selects the OpenTelemetry span exporter (SPEC_FULL §AMBIENT
// STACK).
type Tracing struct {
	Exporter string `yaml:"exporter" validate:"oneof=none jaeger zipkin"`
	Endpoint string `yaml:"endpoint"`
}

func (m Mqtt) Validate() error {
	if m.MaxInflight > m.MaxQueued {
		// An inflight message is also a queued entry, so a session's
		// inflight bound can never exceed its own queue bound.
		return fmt.Errorf("config: max_inflight (%d) exceeds max_queued (%d)", m.MaxInflight, m.MaxQueued)
	}
	return nil
}

// Default returns the configuration the teacher's doc comments describe,
// scaled for a constrained device.
func Default() *Config {
	return &Config{
		ServiceName:    "tideway",
		WorkerPoolSize: 256,
		Log:            Log{Level: "info"},
		Mqtt: Mqtt{
			Enabled:              true,
			TCPListen:            ":1883",
			ReadTimeout:          100 * time.Millisecond,
			SelectTimeout:        5 * time.Second,
			InactiveTimeout:      10 * time.Second,
			RestartDelay:         time.Second,
			MaxSessions:          64,
			MaxStoredSessions:    32,
			MaxSubscriptions:     16,
			MaxInflight:          8,
			MaxQueued:            64,
			MaxRetained:          32,
			MaxPacketSize:        65536,
			DeliveryMode:         "overlap",
			AllowZeroLenClientId: true,
			TolerantPubrec:       true,
			Persistence: Persistence{
				Session:      StoreConfig{Type: "memory"},
				Subscription: StoreConfig{Type: "memory"},
			},
			Tracing: Tracing{Exporter: "none"},
		},
	}
}
