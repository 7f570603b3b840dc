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

// Connack is the broker's acknowledgement of a CONNECT (spec §6): a
// session-present bit and a return code, two bytes total.
type Connack struct {
	SessionPresent bool
	Code           code.Code
}

func (a *Connack) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}
	var b byte
	if a.SessionPresent {
		b = 0x01
	}
	buf.WriteByte(b)
	buf.WriteByte(byte(a.Code))
	return encodeReserved(w, CONNACK, buf)
}

func (a *Connack) Decode(r io.Reader, fh *FixedHeader) error {
	if fh.RemainLength != 2 {
		return xerror.ErrMalformed
	}
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return xerror.ErrMalformed
	}
	if b[0]&0xFE != 0 {
		return xerror.ErrMalformed
	}
	a.SessionPresent = b[0]&0x01 == 1
	a.Code = code.Code(b[1])
	return nil
}
