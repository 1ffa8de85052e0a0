package binding

import (
	"regexp"
	"strings"

	"github.com/ByLCY/checkpress/layout"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${key} 替换为 lookup 返回的值。
// lookup 为空或键不存在时保留原占位符。
func Interpolate(text string, lookup func(key string) (string, bool)) string {
	if lookup == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		key := strings.TrimSpace(groups[1])
		if key == "" {
			return match
		}
		if val, ok := lookup(key); ok {
			return val
		}
		return match
	})
}

// Interpolate 使用字段解析规则填充 ${key} 占位符，例如打印任务标题 "Check ${checkNumber}"。
func (r Resolver) Interpolate(text string, data *layout.CheckData) string {
	return Interpolate(text, func(key string) (string, bool) {
		if !IsKnownKey(key) {
			return "", false
		}
		return r.Resolve(key, data), true
	})
}
