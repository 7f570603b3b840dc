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
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/yunqi/tideway/internal/queue"
)

// generateClientId assigns an id to a v3.1.1 client that connected with
// clean=true and an empty client id (spec §4.6, §8 property 9).
func generateClientId() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return "tideway-" + hex.EncodeToString(b[:])
}

func secondsToDuration(keepAlive uint16) time.Duration {
	return time.Duration(keepAlive) * time.Second
}

func retainedAsMessage(r *queue.Retained, qos byte) queue.Message {
	return queue.Message{Topic: r.Topic, Payload: r.Payload, Qos: qos, Retain: true}
}
