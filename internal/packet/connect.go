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

package packet

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/yunqi/tideway/internal/code"
	"github.com/yunqi/tideway/internal/xerror"
)

type (
	// Connect represents the MQTT CONNECT packet.
	Connect struct {
		ctx context.Context

		Version     Version
		FixedHeader *FixedHeader

		ProtocolName  []byte
		ProtocolLevel byte
		ConnectFlags

		// KeepAlive is the negotiated keepalive interval in seconds.
		// 2*KeepAlive is the session-manager timeout for this session
		// once activated (spec §4.5).
		KeepAlive uint16

		WillTopic   []byte
		WillMessage []byte

		ClientId []byte
		Username []byte
		Password []byte
	}

	// ConnectFlags is the single connect-flags byte of the variable
	// header, decomposed into its named bits.
	ConnectFlags struct {
		CleanSession bool
		WillFlag     bool
		WillQoS      byte
		WillRetain   bool
		PasswordFlag bool
		UsernameFlag bool
	}
)

func (c *Connect) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *Connect) WithContext(ctx context.Context) *Connect {
	c.ctx = ctx
	return c
}

// NewConnect decodes a CONNECT packet from r given its already-parsed fixed
// header. The reserved fixed-header flag bits must be zero (spec §6).
func NewConnect(fixedHeader *FixedHeader, r io.Reader) (*Connect, error) {
	if fixedHeader.Flags != FixedHeaderFlagReserved {
		return nil, xerror.ErrMalformed
	}
	p := &Connect{FixedHeader: fixedHeader}
	if err := p.Decode(r); err != nil {
		return nil, err
	}
	return p, nil
}

const (
	_ = 1 << iota
	cleanSessionBit
	willFlagBit
	willQoSBit0
	willQoSBit1
	willRetainBit
	passwordFlagBit
	usernameFlagBit
)

// Encode writes the CONNECT packet to w. The broker never emits CONNECT
// (it is client-to-server only); this exists for symmetry and for tests
// that build broker-side fixtures.
func (c *Connect) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}
	protocolName, ok := version2protocolName[c.Version]
	if !ok {
		return xerror.ErrMalformed
	}
	nameBytes, _, err := UTF8EncodedStrings(protocolName)
	if err != nil {
		return err
	}
	buf.Write(nameBytes)
	buf.WriteByte(byte(c.Version))

	var flags byte
	if c.UsernameFlag {
		flags |= usernameFlagBit
	}
	if c.PasswordFlag {
		flags |= passwordFlagBit
	}
	if c.WillRetain {
		flags |= willRetainBit
	}
	switch c.WillQoS {
	case 1:
		flags |= willQoSBit0
	case 2:
		flags |= willQoSBit1
	}
	if c.WillFlag {
		flags |= willFlagBit
	}
	if c.CleanSession {
		flags |= cleanSessionBit
	}
	buf.WriteByte(flags)
	if err := writeUint16(buf, c.KeepAlive); err != nil {
		return err
	}

	clientIdBytes, _, err := UTF8EncodedStrings(c.ClientId)
	if err != nil {
		return err
	}
	buf.Write(clientIdBytes)

	if c.WillFlag {
		willTopicBytes, _, err := UTF8EncodedStrings(c.WillTopic)
		if err != nil {
			return err
		}
		buf.Write(willTopicBytes)

		willMsgBytes, _, err := UTF8EncodedStrings(c.WillMessage)
		if err != nil {
			return err
		}
		buf.Write(willMsgBytes)
	}
	if c.UsernameFlag {
		usernameBytes, _, err := UTF8EncodedStrings(c.Username)
		if err != nil {
			return err
		}
		buf.Write(usernameBytes)
	}
	if c.PasswordFlag {
		passwordBytes, _, err := UTF8EncodedStrings(c.Password)
		if err != nil {
			return err
		}
		buf.Write(passwordBytes)
	}
	return encodeReserved(w, CONNECT, buf)
}

// Decode reads the variable header and payload from r given the already
// consumed fixed header. Protocol magic must be either "MQIsdp"+level 3 or
// "MQTT"+level 4 (spec §4.6); anything else is reported as
// ErrV3UnacceptableProtocolVersion so the caller can send CONNACK code 1.
func (c *Connect) Decode(r io.Reader) error {
	restBuffer := make([]byte, c.FixedHeader.RemainLength)
	if _, err := io.ReadFull(r, restBuffer); err != nil {
		return xerror.ErrMalformed
	}
	buf := bytes.NewBuffer(restBuffer)

	protocolName, err := UTF8DecodedStrings(false, buf)
	if err != nil {
		return err
	}
	c.ProtocolName = protocolName

	c.ProtocolLevel, err = buf.ReadByte()
	if err != nil {
		return xerror.ErrMalformed
	}
	c.Version = Version(c.ProtocolLevel)

	wantName, ok := version2protocolName[c.Version]
	if !ok || !bytes.Equal(wantName, protocolName) {
		return xerror.ErrV3UnacceptableProtocolVersion
	}

	connectFlags, err := buf.ReadByte()
	if err != nil {
		return xerror.ErrMalformed
	}
	if connectFlags&0x01 != 0 { // reserved bit [MQTT-3.1.2-3]
		return xerror.ErrMalformed
	}
	c.CleanSession = (connectFlags>>1)&0x01 == 1
	c.WillFlag = (connectFlags>>2)&0x01 == 1
	c.WillQoS = (connectFlags >> 3) & 0x03
	if c.WillQoS > 2 {
		return xerror.ErrMalformed
	}
	if !c.WillFlag && c.WillQoS != 0 { // [MQTT-3.1.2-11]
		return xerror.ErrMalformed
	}
	c.WillRetain = (connectFlags>>5)&0x01 == 1
	if !c.WillFlag && c.WillRetain { // [MQTT-3.1.2-11]
		return xerror.ErrMalformed
	}
	c.PasswordFlag = (connectFlags>>6)&0x01 == 1
	c.UsernameFlag = (connectFlags>>7)&0x01 == 1
	if c.PasswordFlag && !c.UsernameFlag {
		return xerror.ErrMalformed
	}

	c.KeepAlive, err = readUint16(buf)
	if err != nil {
		return xerror.ErrMalformed
	}
	return c.decodePayload(buf)
}

func (c *Connect) decodePayload(buf *bytes.Buffer) error {
	var err error
	c.ClientId, err = UTF8DecodedStrings(true, buf)
	if err != nil {
		return err
	}

	if len(c.ClientId) == 0 {
		if IsVersion3(c.Version) {
			// v3.1.0: client id is always required. [MQTT-3.1.3-3]
			return xerror.ErrV3IdentifierRejected
		}
		if !c.CleanSession {
			// v3.1.1: required unless clean session. [MQTT-3.1.3-7/8]
			return xerror.ErrV3IdentifierRejected
		}
	}

	if c.WillFlag {
		c.WillTopic, err = UTF8DecodedStrings(true, buf)
		if err != nil {
			return err
		}
		if len(c.WillTopic) == 0 {
			return xerror.ErrMalformed
		}
		if bytes.ContainsAny(c.WillTopic, "+#") {
			return xerror.ErrWildcardInTopicName
		}
		if c.WillTopic[0] == '$' {
			return xerror.ErrTopicStartsWithDollar
		}
		c.WillMessage, err = UTF8DecodedStrings(false, buf)
		if err != nil {
			return err
		}
	}

	if c.UsernameFlag {
		c.Username, err = UTF8DecodedStrings(true, buf)
		if err != nil {
			return err
		}
	}

	if c.PasswordFlag {
		c.Password, err = UTF8DecodedStrings(false, buf)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Connect) String() string {
	return fmt.Sprintf(
		"CONNECT version=%s clientId=%q clean=%v keepalive=%d will=%v",
		c.Version, c.ClientId, c.CleanSession, c.KeepAlive, c.WillFlag)
}

// NewConnackPacket builds the CONNACK that answers this CONNECT.
// sessionPresent is forced false whenever cd is not code.Success (spec §4.5).
func (c *Connect) NewConnackPacket(cd code.Code, sessionPresent bool) *Connack {
	ack := &Connack{Code: cd}
	if cd == code.Success {
		ack.SessionPresent = sessionPresent
	}
	return ack
}
