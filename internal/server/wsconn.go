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

package server

import (
	"bytes"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla/websocket connection to the byte-stream
// transport the client's read loop expects: each inbound WebSocket binary
// message is buffered and drained byte-by-byte, since an MQTT fixed header
// and its body do not necessarily land in one WebSocket frame (spec §6's
// wire format is transport-agnostic; only the framing differs).
type wsConn struct {
	*websocket.Conn
	buf bytes.Reader
}

func (w *wsConn) Read(p []byte) (int, error) {
	if w.buf.Len() == 0 {
		_, data, err := w.Conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.buf.Reset(data)
	}
	return w.buf.Read(p)
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.Conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) SetReadDeadline(t time.Time) error {
	return w.Conn.SetReadDeadline(t)
}
