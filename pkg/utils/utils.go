// Package utils 通用小工具，不依赖 internal
package utils

import "strings"

// CoalesceString 返回第一个非空字符串
func CoalesceString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// DefaultInt 若 v 为 0 则返回 defaultVal
func DefaultInt(v, defaultVal int) int {
	if v == 0 {
		return defaultVal
	}
	return v
}

// DefaultFloat 若 v 为 0 则返回 defaultVal
func DefaultFloat(v, defaultVal float64) float64 {
	if v == 0 {
		return defaultVal
	}
	return v
}

// ClampInt 将 v 限制在 [lo, hi] 区间
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ContainsAny 判断 text 小写后是否包含任一关键词
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Truncate 按 rune 截断字符串，超出部分以省略号结尾
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
