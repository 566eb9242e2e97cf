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

package memory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TurnStorePg Postgres 实现，表结构见 migrations/turns.sql
type TurnStorePg struct {
	pool *pgxpool.Pool
}

// NewTurnStorePg 创建基于 PostgreSQL 的 TurnStore
func NewTurnStorePg(ctx context.Context, dsn string) (*TurnStorePg, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &TurnStorePg{pool: pool}, nil
}

// Close 关闭连接池
func (s *TurnStorePg) Close() {
	s.pool.Close()
}

// Append 持久化一轮对话
func (s *TurnStorePg) Append(ctx context.Context, sessionID string, turn Turn) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO study_turns (session_id, role, text, tool_used, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sessionID, turn.Role, turn.Text, turn.ToolUsed, turn.Timestamp)
	return err
}

// History 返回该会话最近 limit 轮，时间升序
func (s *TurnStorePg) History(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT role, text, tool_used, created_at FROM (
		   SELECT role, text, tool_used, created_at FROM study_turns
		   WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2
		 ) t ORDER BY created_at ASC`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.Role, &turn.Text, &turn.ToolUsed, &turn.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, turn)
	}
	return out, rows.Err()
}
