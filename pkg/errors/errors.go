// Package errors 提供统一错误辅助，不依赖 internal
package errors

import (
	"errors"
	"fmt"
)

// 错误分级（见错误处理设计）：
// - ErrConfiguration 启动期致命，直接对用户可见
// - ErrProvider / ErrRateLimit 单步可恢复，记入 ToolResult 后继续
// - ErrRetrieval 按空上下文处理，不致命
// - ErrPlanning 不应发生（Planner 有强制兜底），属程序缺陷
var (
	ErrConfiguration = errors.New("configuration error")
	ErrProvider      = errors.New("provider error")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrRetrieval     = errors.New("retrieval error")
	ErrPlanning      = errors.New("planning error")

	ErrNotFound   = errors.New("not found")
	ErrInvalidArg = errors.New("invalid argument")
)

// Wrap 包装错误并附加消息
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 带格式的 Wrap
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is 透传 errors.Is，调用方无需同时引入标准库 errors
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsRecoverable 单步失败后是否继续执行后续步骤
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrProvider) || errors.Is(err, ErrRateLimit) || errors.Is(err, ErrRetrieval)
}
