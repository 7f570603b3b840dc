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

// Package oracle is the network-availability collaborator the startup
// sequence consults before binding a listener (spec §6): on a constrained
// device the broker should not occupy a port while the network interface
// it needs is still coming up.
package oracle

// Oracle reports whether the network the broker needs is currently
// available.
type Oracle interface {
	NetworkAvailable() bool
}

// AlwaysAvailable is the default Oracle: suitable for any host where the
// broker is started after the network stack is already up.
type AlwaysAvailable struct{}

func (AlwaysAvailable) NetworkAvailable() bool { return true }
