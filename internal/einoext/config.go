// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package einoext

import (
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"study-buddy/pkg/config"
)

const defaultRedisAddr = "localhost:6379"

// RedisOptionsFromVectorConfig 从 VectorConfig 构造 redis.Options（type=redis 时使用）。
// Redis Stack 的向量检索要求 Protocol 2 且 UnstableResp3 打开。
func RedisOptionsFromVectorConfig(cfg config.VectorConfig) (*redis.Options, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = defaultRedisAddr
	}
	db := 0
	if cfg.DB != "" {
		parsed, err := strconv.Atoi(cfg.DB)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("非法的 redis db: %q", cfg.DB)
		}
		db = parsed
	}
	return &redis.Options{
		Addr:          addr,
		Password:      cfg.Password,
		DB:            db,
		Protocol:      2,
		UnstableResp3: true,
	}, nil
}
