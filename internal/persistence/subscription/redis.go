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

package subscription

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(addr, password string, db int, prefix string) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		prefix: prefix,
	}
}

func (r *redisStore) key(clientId string) string {
	return r.prefix + "subscriptions:" + clientId
}

func (r *redisStore) Replace(ctx context.Context, clientId string, entries []Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(clientId), b, 0).Err()
}

func (r *redisStore) Load(ctx context.Context, clientId string) ([]Entry, error) {
	b, err := r.client.Get(ctx, r.key(clientId)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *redisStore) Delete(ctx context.Context, clientId string) error {
	return r.client.Del(ctx, r.key(clientId)).Err()
}
