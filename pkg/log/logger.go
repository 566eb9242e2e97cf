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

package log

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger 结构化日志，内嵌 slog.Logger
type Logger struct {
	*slog.Logger
}

// Config 日志配置
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json 或 text，默认 json
}

// NewLogger 根据配置创建 Logger。cfg 为 nil 时输出 info 级 JSON 日志。
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("非法的日志级别 %q: %w", cfg.Level, err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return &Logger{Logger: slog.New(handler)}, nil
}

// WithSession 返回带 session_id 字段的子 Logger
func (l *Logger) WithSession(sessionID string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{Logger: l.Logger.With("session_id", sessionID)}
}
