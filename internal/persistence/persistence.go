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

// Package persistence registers the session and subscription store
// constructors keyed by config.StoreConfig.Type, so the server wires
// whichever backend the configuration names without importing go-redis
// when nobody asked for it.
package persistence

import (
	"github.com/yunqi/tideway/config"
	"github.com/yunqi/tideway/internal/persistence/session"
	"github.com/yunqi/tideway/internal/persistence/subscription"
)

type SessionStoreFunc func(cfg *config.StoreConfig) (session.Store, error)
type SubscriptionStoreFunc func(cfg *config.StoreConfig) (subscription.Store, error)

var (
	sessionStores = map[string]SessionStoreFunc{
		"memory": func(*config.StoreConfig) (session.Store, error) {
			return session.NewMemoryStore(), nil
		},
		"redis": func(cfg *config.StoreConfig) (session.Store, error) {
			return session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix), nil
		},
	}
	subscriptionStores = map[string]SubscriptionStoreFunc{
		"memory": func(*config.StoreConfig) (subscription.Store, error) {
			return subscription.NewMemoryStore(), nil
		},
		"redis": func(cfg *config.StoreConfig) (subscription.Store, error) {
			return subscription.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix), nil
		},
	}
)

// GetSessionStore returns the constructor registered for typ, and whether
// one was found.
func GetSessionStore(typ string) (SessionStoreFunc, bool) {
	f, ok := sessionStores[typ]
	return f, ok
}

// GetSubscriptionStore returns the constructor registered for typ, and
// whether one was found.
func GetSubscriptionStore(typ string) (SubscriptionStoreFunc, bool) {
	f, ok := subscriptionStores[typ]
	return f, ok
}
