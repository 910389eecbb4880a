package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPretty(t *testing.T) {
	out := Pretty(`{"title":"hello"}`, `{"title":"goodbye"}`)
	assert.Contains(t, out, "goodbye")

	// 相同输入不产生标记颜色序列
	same := Pretty("unchanged", "unchanged")
	assert.Equal(t, "unchanged", same)
}

func TestPatch(t *testing.T) {
	patch := Patch("the quick brown fox", "the slow brown fox")
	assert.True(t, strings.Contains(patch, "slow"))

	// 无变化时补丁为空
	assert.Equal(t, "", Patch("same", "same"))
}
