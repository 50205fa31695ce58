package dispatch

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcd", truncate("abcdef", 4))

	// 截断点落在多字节字符中间时回退到 rune 边界
	s := "短信已发送" // 每个汉字 3 字节
	for max := 1; max < len(s); max++ {
		got := truncate(s, max)
		assert.True(t, utf8.ValidString(got), "max=%d got=%q", max, got)
		assert.LessOrEqual(t, len(got), max)
		assert.True(t, strings.HasPrefix(s, got))
	}
}
