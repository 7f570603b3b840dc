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

// Publish carries a message payload (spec §3, §4.6). Topic must be
// non-empty, wildcard-free and not start with '$' on ingress; PacketId is
// present and non-zero only for QoS 1 and 2.
type Publish struct {
	Dup      bool
	Qos      byte
	Retain   bool
	Topic    []byte
	PacketId uint16
	Payload  []byte
}

func (p *Publish) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}
	topicBytes, _, err := UTF8EncodedStrings(p.Topic)
	if err != nil {
		return err
	}
	buf.Write(topicBytes)
	if p.Qos > 0 {
		if err := writeUint16(buf, p.PacketId); err != nil {
			return err
		}
	}
	buf.Write(p.Payload)
	return encodeWithFlags(w, PUBLISH, p.Dup, p.Qos, p.Retain, buf)
}

// DecodePublish decodes a PUBLISH body given its already-parsed fixed
// header. It enforces qos ∈ {0,1,2}, dup=1 forbidden with qos=0, non-empty
// wildcard-free topic not starting with '$', and a non-zero packet id when
// qos > 0 (spec §4.6).
func DecodePublish(fh *FixedHeader, r io.Reader) (*Publish, error) {
	if fh.Qos > 2 {
		return nil, xerror.ErrMalformed
	}
	if fh.Qos == 0 && fh.Dup {
		return nil, xerror.ErrMalformed
	}
	body := make([]byte, fh.RemainLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, xerror.ErrMalformed
	}
	buf := bytes.NewBuffer(body)

	topic, err := UTF8DecodedStrings(true, buf)
	if err != nil {
		return nil, err
	}
	if len(topic) == 0 {
		return nil, xerror.ErrMalformed
	}
	if bytes.ContainsAny(topic, "+#") {
		return nil, xerror.ErrWildcardInTopicName
	}
	if topic[0] == '$' {
		return nil, xerror.ErrTopicStartsWithDollar
	}

	p := &Publish{Dup: fh.Dup, Qos: fh.Qos, Retain: fh.Retain, Topic: topic}
	if fh.Qos > 0 {
		id, err := readUint16(buf)
		if err != nil {
			return nil, xerror.ErrMalformed
		}
		if id == 0 {
			return nil, xerror.ErrMalformed
		}
		p.PacketId = id
	}
	p.Payload = append([]byte(nil), buf.Bytes()...)
	return p, nil
}
