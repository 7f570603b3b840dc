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
	"io"

	"github.com/yunqi/tideway/internal/code"
	"github.com/yunqi/tideway/internal/xerror"
)

// TopicQoS is one (filter, requested-qos) tuple of a SUBSCRIBE payload.
type TopicQoS struct {
	Filter []byte
	Qos    byte
}

// Subscribe requires at least one tuple; an empty payload is a protocol
// violation that drops the session (spec §4.6, §8 property 10).
type Subscribe struct {
	PacketId uint16
	Topics   []TopicQoS
}

func (s *Subscribe) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}
	if err := writeUint16(buf, s.PacketId); err != nil {
		return err
	}
	for _, t := range s.Topics {
		filterBytes, _, err := UTF8EncodedStrings(t.Filter)
		if err != nil {
			return err
		}
		buf.Write(filterBytes)
		buf.WriteByte(t.Qos)
	}
	return encodeQoS1Flags(w, SUBSCRIBE, buf)
}

func DecodeSubscribe(fh *FixedHeader, r io.Reader) (*Subscribe, error) {
	if fh.Qos != 1 {
		return nil, xerror.ErrMalformed
	}
	body := make([]byte, fh.RemainLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, xerror.ErrMalformed
	}
	buf := bytes.NewBuffer(body)

	id, err := readUint16(buf)
	if err != nil {
		return nil, xerror.ErrMalformed
	}
	if id == 0 {
		return nil, xerror.ErrMalformed
	}
	s := &Subscribe{PacketId: id}
	for buf.Len() > 0 {
		filter, err := UTF8DecodedStrings(true, buf)
		if err != nil {
			return nil, err
		}
		qos, err := buf.ReadByte()
		if err != nil {
			return nil, xerror.ErrMalformed
		}
		if qos&0xFC != 0 || qos > 2 {
			return nil, xerror.ErrMalformed
		}
		s.Topics = append(s.Topics, TopicQoS{Filter: filter, Qos: qos})
	}
	if len(s.Topics) == 0 {
		return nil, xerror.ErrEmptySubscribeList
	}
	return s, nil
}

// Suback carries one granted-QoS (or code.SubackFailure) byte per
// requested subscription, in request order (spec §6).
type Suback struct {
	PacketId uint16
	Codes    []code.SubackCode
}

func (s *Suback) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}
	if err := writeUint16(buf, s.PacketId); err != nil {
		return err
	}
	for _, c := range s.Codes {
		buf.WriteByte(byte(c))
	}
	return encodeReserved(w, SUBACK, buf)
}

func DecodeSuback(fh *FixedHeader, r io.Reader) (*Suback, error) {
	body := make([]byte, fh.RemainLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, xerror.ErrMalformed
	}
	if len(body) < 2 {
		return nil, xerror.ErrMalformed
	}
	s := &Suback{PacketId: uint16(body[0])<<8 | uint16(body[1])}
	for _, b := range body[2:] {
		s.Codes = append(s.Codes, code.SubackCode(b))
	}
	return s, nil
}

// Unsubscribe requires at least one filter (spec §4.6).
type Unsubscribe struct {
	PacketId uint16
	Filters  [][]byte
}

func (u *Unsubscribe) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}
	if err := writeUint16(buf, u.PacketId); err != nil {
		return err
	}
	for _, f := range u.Filters {
		fb, _, err := UTF8EncodedStrings(f)
		if err != nil {
			return err
		}
		buf.Write(fb)
	}
	return encodeQoS1Flags(w, UNSUBSCRIBE, buf)
}

func DecodeUnsubscribe(fh *FixedHeader, r io.Reader) (*Unsubscribe, error) {
	if fh.Qos != 1 {
		return nil, xerror.ErrMalformed
	}
	body := make([]byte, fh.RemainLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, xerror.ErrMalformed
	}
	buf := bytes.NewBuffer(body)
	id, err := readUint16(buf)
	if err != nil {
		return nil, xerror.ErrMalformed
	}
	if id == 0 {
		return nil, xerror.ErrMalformed
	}
	u := &Unsubscribe{PacketId: id}
	for buf.Len() > 0 {
		filter, err := UTF8DecodedStrings(true, buf)
		if err != nil {
			return nil, err
		}
		u.Filters = append(u.Filters, filter)
	}
	if len(u.Filters) == 0 {
		return nil, xerror.ErrEmptySubscribeList
	}
	return u, nil
}

// Unsuback acknowledges an UNSUBSCRIBE; body is just the packet id.
type Unsuback struct{ PacketId uint16 }

func (u *Unsuback) Encode(w io.Writer) error {
	return (&idPacket{packetType: UNSUBACK, PacketId: u.PacketId}).encode(w, false)
}

func DecodeUnsuback(fh *FixedHeader, r io.Reader) (*Unsuback, error) {
	id, err := decodeIDPacket(fh, r)
	if err != nil {
		return nil, err
	}
	return &Unsuback{PacketId: id}, nil
}
