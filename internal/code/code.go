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

// Package code holds the fixed reason-code bytes the wire protocol (spec §6)
// defines for CONNACK and SUBACK.
package code

// Code is a CONNACK return code.
type Code byte

const (
	Success                     Code = 0
	RefusedUnacceptableProtocol Code = 1
	RefusedIdentifierRejected   Code = 2
	RefusedServerUnavailable    Code = 3
	RefusedBadUsernameOrPass    Code = 4
	RefusedNotAuthorized        Code = 5
)

// SubackCode is a single granted-QoS (or failure) byte in a SUBACK payload.
type SubackCode byte

const (
	SubackQoS0    SubackCode = 0x00
	SubackQoS1    SubackCode = 0x01
	SubackQoS2    SubackCode = 0x02
	SubackFailure SubackCode = 0x80
)
