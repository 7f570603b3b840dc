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

// Pingreq, Pingresp and Disconnect all have a zero-length variable header
// and payload: two bytes on the wire total (spec §4.6).

type Pingreq struct{}

func (Pingreq) Encode(w io.Writer) error { return encodeReserved(w, PINGREQ, &bytes.Buffer{}) }

func DecodePingreq(fh *FixedHeader) (*Pingreq, error) {
	if fh.RemainLength != 0 {
		return nil, xerror.ErrMalformed
	}
	return &Pingreq{}, nil
}

type Pingresp struct{}

func (Pingresp) Encode(w io.Writer) error { return encodeReserved(w, PINGRESP, &bytes.Buffer{}) }

func DecodePingresp(fh *FixedHeader) (*Pingresp, error) {
	if fh.RemainLength != 0 {
		return nil, xerror.ErrMalformed
	}
	return &Pingresp{}, nil
}

type Disconnect struct{}

func (Disconnect) Encode(w io.Writer) error { return encodeReserved(w, DISCONNECT, &bytes.Buffer{}) }

func DecodeDisconnect(fh *FixedHeader) (*Disconnect, error) {
	if fh.RemainLength != 0 {
		return nil, xerror.ErrMalformed
	}
	return &Disconnect{}, nil
}
