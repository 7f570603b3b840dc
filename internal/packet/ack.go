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

	"github.com/yunqi/tideway/internal/xerror"
)

// idPacket is the shared two-byte-payload shape of PUBACK, PUBREC, PUBREL
// and PUBCOMP: a single packet identifier, no other body (spec §6).
type idPacket struct {
	packetType PacketType
	PacketId   uint16
}

func (p *idPacket) encode(w io.Writer, qos1Flags bool) error {
	buf := &bytes.Buffer{}
	if err := writeUint16(buf, p.PacketId); err != nil {
		return err
	}
	if qos1Flags {
		return encodeQoS1Flags(w, p.packetType, buf)
	}
	return encodeReserved(w, p.packetType, buf)
}

func decodeIDPacket(fh *FixedHeader, r io.Reader) (uint16, error) {
	if fh.RemainLength != 2 {
		return 0, xerror.ErrMalformed
	}
	id, err := readUint16(r)
	if err != nil {
		return 0, xerror.ErrMalformed
	}
	return id, nil
}

// Puback acknowledges a QoS-1 PUBLISH.
type Puback struct{ PacketId uint16 }

func (p *Puback) Encode(w io.Writer) error {
	return (&idPacket{packetType: PUBACK, PacketId: p.PacketId}).encode(w, false)
}

func DecodePuback(fh *FixedHeader, r io.Reader) (*Puback, error) {
	id, err := decodeIDPacket(fh, r)
	if err != nil {
		return nil, err
	}
	return &Puback{PacketId: id}, nil
}

// Pubrec is the first acknowledgement of a QoS-2 PUBLISH.
type Pubrec struct{ PacketId uint16 }

func (p *Pubrec) Encode(w io.Writer) error {
	return (&idPacket{packetType: PUBREC, PacketId: p.PacketId}).encode(w, false)
}

func DecodePubrec(fh *FixedHeader, r io.Reader) (*Pubrec, error) {
	id, err := decodeIDPacket(fh, r)
	if err != nil {
		return nil, err
	}
	return &Pubrec{PacketId: id}, nil
}

// Pubrel answers PUBREC; its fixed-header flags carry the fixed value 0x02
// (spec §6) — qos bits == 1.
type Pubrel struct{ PacketId uint16 }

func (p *Pubrel) Encode(w io.Writer) error {
	return (&idPacket{packetType: PUBREL, PacketId: p.PacketId}).encode(w, true)
}

func DecodePubrel(fh *FixedHeader, r io.Reader) (*Pubrel, error) {
	if fh.Qos != 1 {
		return nil, xerror.ErrMalformed
	}
	id, err := decodeIDPacket(fh, r)
	if err != nil {
		return nil, err
	}
	return &Pubrel{PacketId: id}, nil
}

// Pubcomp completes the QoS-2 flow.
type Pubcomp struct{ PacketId uint16 }

func (p *Pubcomp) Encode(w io.Writer) error {
	return (&idPacket{packetType: PUBCOMP, PacketId: p.PacketId}).encode(w, false)
}

func DecodePubcomp(fh *FixedHeader, r io.Reader) (*Pubcomp, error) {
	id, err := decodeIDPacket(fh, r)
	if err != nil {
		return nil, err
	}
	return &Pubcomp{PacketId: id}, nil
}
