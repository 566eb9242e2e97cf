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

package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"

	"study-buddy/internal/app"
)

// App API 服务：装配 Hertz 服务器与路由
type App struct {
	bootstrap *app.Bootstrap
	handler   *Handler
	hertz     *server.Hertz
}

// NewApp 创建 API 应用
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	if bootstrap == nil {
		return nil, fmt.Errorf("api app requires bootstrap")
	}
	return &App{
		bootstrap: bootstrap,
		handler:   NewHandler(bootstrap),
	}, nil
}

// Run 启动 HTTP 服务，阻塞直到 Shutdown 或出错
func (a *App) Run(addr string) error {
	levelVar := &slog.LevelVar{}
	if a.bootstrap.Config != nil {
		switch a.bootstrap.Config.Log.Level {
		case "debug":
			levelVar.Set(slog.LevelDebug)
		case "warn":
			levelVar.Set(slog.LevelWarn)
		case "error":
			levelVar.Set(slog.LevelError)
		default:
			levelVar.Set(slog.LevelInfo)
		}
	}
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(os.Stdout),
		hertzslog.WithLevel(levelVar),
	))

	a.hertz = server.New(server.WithHostPorts(addr))
	a.registerRoutes(a.hertz)
	return a.hertz.Run()
}

// Shutdown 优雅关闭（ctx 控制超时）
func (a *App) Shutdown(ctx context.Context) error {
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	a.bootstrap.Close()
	return nil
}

func (a *App) registerRoutes(h *server.Hertz) {
	h.GET("/health", a.handler.Health)
	h.GET("/metrics", a.handler.Metrics)

	v1 := h.Group("/api/v1")
	{
		v1.POST("/chat", a.handler.Chat)
		v1.POST("/documents", a.handler.UploadDocument)
		v1.GET("/sessions/:id/summary", a.handler.SessionSummary)
		v1.GET("/sessions/:id/history", a.handler.SessionHistory)
	}
}
