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

// Package binary provides the primitive big-endian encode/decode helpers
// the wire codec builds on: booleans, 16/32-bit integers and MQTT's
// length-prefixed UTF-8 strings.
package binary

import (
	"encoding/binary"
	"io"

	"github.com/yunqi/tideway/internal/xerror"
)

// ReadBool reads a single byte and reports whether it is non-zero.
func ReadBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// WriteBool writes a single byte: 1 for true, 0 for false.
func WriteBool(w io.Writer, b bool) error {
	var out byte
	if b {
		out = 1
	}
	_, err := w.Write([]byte{out})
	return err
}

// ReadUint16 reads a big-endian 16-bit unsigned integer.
func ReadUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// WriteUint16 writes v as a big-endian 16-bit unsigned integer.
func WriteUint16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadUint32 reads a big-endian 32-bit unsigned integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// WriteUint32 writes v as a big-endian 32-bit unsigned integer.
func WriteUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadString reads a 16-bit length prefix followed by that many raw bytes.
// It does not validate UTF-8; callers that need MQTT string validation use
// packet.UTF8DecodedStrings.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadUint16(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", xerror.ErrMalformed
	}
	return string(buf), nil
}

// WriteString writes b as a 16-bit length prefix followed by the raw bytes.
func WriteString(w io.Writer, b []byte) error {
	if err := WriteUint16(w, uint16(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
