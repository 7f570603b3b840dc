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

package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisStore survives a process restart, trading the memory store's
// simplicity for a durable non-clean session table (spec §4.5).
type redisStore struct {
	client *redis.Client
	prefix string
	zkey   string // sorted set of client ids, scored by StoredAt, for Oldest
}

func NewRedisStore(addr, password string, db int, prefix string) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		prefix: prefix,
		zkey:   prefix + "sessions:index",
	}
}

func (r *redisStore) key(clientId string) string {
	return r.prefix + "sessions:" + clientId
}

func (r *redisStore) Save(ctx context.Context, sess *StoredSession) error {
	sess.StoredAt = time.Now()
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(sess.ClientId), b, 0)
	pipe.ZAdd(ctx, r.zkey, &redis.Z{Score: float64(sess.StoredAt.UnixNano()), Member: sess.ClientId})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisStore) Load(ctx context.Context, clientId string) (*StoredSession, error) {
	b, err := r.client.Get(ctx, r.key(clientId)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess StoredSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *redisStore) Delete(ctx context.Context, clientId string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(clientId))
	pipe.ZRem(ctx, r.zkey, clientId)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisStore) Oldest(ctx context.Context) (string, error) {
	res, err := r.client.ZRangeWithScores(ctx, r.zkey, 0, 0).Result()
	if err != nil {
		return "", err
	}
	if len(res) == 0 {
		return "", nil
	}
	return res[0].Member.(string), nil
}

func (r *redisStore) Len(ctx context.Context) (int, error) {
	n, err := r.client.ZCard(ctx, r.zkey).Result()
	return int(n), err
}
