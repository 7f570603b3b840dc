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

// Package xerror declares the sentinel errors the codec and packet handler
// classify wire input against. They are matched with errors.Is, never by
// string comparison or type assertion.
package xerror

import "errors"

var (
	// ErrMalformed covers any packet whose shape violates the fixed
	// wire-format rules: bad reserved bits, length mismatches, missing
	// required fields.
	ErrMalformed = errors.New("mqtt: malformed packet")

	// ErrMalformedVarint is returned when a remaining-length varint reads
	// a fifth continuation byte.
	ErrMalformedVarint = errors.New("mqtt: malformed remaining-length varint")

	// ErrMalformedUTF8 is returned by the UTF-8 string decoder on
	// ill-formed byte sequences or an embedded NUL.
	ErrMalformedUTF8 = errors.New("mqtt: malformed utf-8 string")

	// ErrV3UnacceptableProtocolVersion is CONNACK code 1: the CONNECT
	// protocol name/level pair did not match MQIsdp/3 or MQTT/4.
	ErrV3UnacceptableProtocolVersion = errors.New("mqtt: unacceptable protocol version")

	// ErrV3IdentifierRejected is CONNACK code 2: a client id is required
	// and absent, or otherwise invalid.
	ErrV3IdentifierRejected = errors.New("mqtt: identifier rejected")

	// ErrServerUnavailable is CONNACK code 3.
	ErrServerUnavailable = errors.New("mqtt: server unavailable")

	// ErrBadUsernameOrPassword is CONNACK code 4.
	ErrBadUsernameOrPassword = errors.New("mqtt: bad username or password")

	// ErrNotAuthorized is CONNACK code 5.
	ErrNotAuthorized = errors.New("mqtt: not authorized")

	// ErrWildcardInTopicName is a protocol violation: a PUBLISH topic
	// name or a will topic contained '+' or '#'.
	ErrWildcardInTopicName = errors.New("mqtt: wildcard in topic name")

	// ErrTopicStartsWithDollar is a protocol violation: a PUBLISH topic
	// name or will topic began with '$'.
	ErrTopicStartsWithDollar = errors.New("mqtt: topic starts with '$'")

	// ErrInvalidTopicFilter names a topic filter that violates
	// wildcard-placement rules. The subscription registry does not return
	// it: Registry.Add reports a rejected filter as false.
	ErrInvalidTopicFilter = errors.New("mqtt: invalid topic filter")

	// ErrEmptySubscribeList is a protocol violation: SUBSCRIBE or
	// UNSUBSCRIBE carried zero topic tuples.
	ErrEmptySubscribeList = errors.New("mqtt: empty subscribe payload")

	// ErrSessionNotActive names a packet that requires an activated
	// session arriving on a half-open one. The packet handler does not
	// return it: dispatch reports the violation as false.
	ErrSessionNotActive = errors.New("mqtt: session not active")

	// ErrSessionsFull is returned by Manager.Activate when the
	// current-sessions set is already at MaxSessions.
	ErrSessionsFull = errors.New("mqtt: max sessions reached")

	// ErrQueueFull is returned by the pending queue's Enqueue when it
	// is already at MaxQueued.
	ErrQueueFull = errors.New("mqtt: pending queue full")

	// ErrInflightFull names a session's inbound inflight set already at
	// MaxInflight. The session does not return it: MarkInboundInflight
	// reports the full set as ok=false.
	ErrInflightFull = errors.New("mqtt: inflight set full")

	// ErrSubscriptionsFull names a session that already holds
	// MaxSubscriptions distinct filters. The subscription registry does
	// not return it: Registry.Add reports the overflow as false.
	ErrSubscriptionsFull = errors.New("mqtt: max subscriptions reached")
)
