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

// Package goroutine bounds the number of live per-connection goroutines
// through an ants pool instead of spawning one unbounded "go" per accepted
// connection, matching the bounded-memory posture spec §5 demands of the
// whole broker.
package goroutine

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/yunqi/tideway/internal/xlog"
	"go.uber.org/zap"
)

var (
	mu   sync.RWMutex
	pool *ants.Pool
	log  = xlog.LoggerModule("goroutine")
)

// Init installs a process-wide pool capped at size. Must be called once
// before Go is used; a zero size leaves Go falling back to a bare "go"
// statement, which tests rely on.
func Init(size int) error {
	if size <= 0 {
		mu.Lock()
		pool = nil
		mu.Unlock()
		return nil
	}
	p, err := ants.NewPool(size, ants.WithPanicHandler(func(r interface{}) {
		log.Error("recovered panic in pooled goroutine", zap.Any("recover", r))
	}))
	if err != nil {
		return err
	}
	mu.Lock()
	pool = p
	mu.Unlock()
	return nil
}

// Go runs fn on the pool when one is configured, otherwise as a bare
// goroutine. Submission failure (pool saturated and non-blocking) falls
// back to a bare goroutine rather than dropping the work.
func Go(fn func()) {
	mu.RLock()
	p := pool
	mu.RUnlock()
	if p == nil {
		go fn()
		return
	}
	if err := p.Submit(fn); err != nil {
		log.Warn("pool submit failed, falling back to bare goroutine", zap.Error(err))
		go fn()
	}
}

// Release tears down the process-wide pool; call on shutdown.
func Release() {
	mu.Lock()
	defer mu.Unlock()
	if pool != nil {
		pool.Release()
		pool = nil
	}
}
